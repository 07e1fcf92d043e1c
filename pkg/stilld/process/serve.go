package process

import (
	"context"
	"time"

	"github.com/tauraamui/stilldaemon/pkg/log"
)

const shutdownTimeout = 5 * time.Second

type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// Serve runs the server until cancelled. A server which fails on its own
// is logged and the process counts as stopped.
func Serve(srv Server) func(context.Context) []chan interface{} {
	return func(cancel context.Context) []chan interface{} {
		var stopSignals []chan interface{}
		stopping := make(chan interface{})
		failed := make(chan error, 1)

		go func() {
			failed <- srv.ListenAndServe()
		}()

		go func(cancel context.Context, stopping chan interface{}) {
			defer close(stopping)
			select {
			case err := <-failed:
				if err != nil {
					log.Error("HTTP server stopped: %v", err)
				}
			case <-cancel.Done():
				ctx, done := context.WithTimeout(context.Background(), shutdownTimeout)
				defer done()
				if err := srv.Shutdown(ctx); err != nil {
					log.Error("%v", err)
				}
				<-failed
			}
		}(cancel, stopping)

		stopSignals = append(stopSignals, stopping)
		return stopSignals
	}
}
