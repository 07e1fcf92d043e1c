// Package web serves the live view, capture triggers and stored captures
// over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/juju/ratelimit"
	"github.com/tauraamui/stilldaemon/pkg/camera"
	"github.com/tauraamui/stilldaemon/pkg/capture"
	"github.com/tauraamui/stilldaemon/pkg/log"
	"github.com/tauraamui/stilldaemon/pkg/storage"
	"github.com/tauraamui/xerror"
)

const busyLogInterval = 10 * time.Second

type Capturer interface {
	Trigger(ctx context.Context, origin string) (capture.Record, bool)
	StreamFrame(ctx context.Context) ([]byte, error)
	Status() string
	Resolver() *storage.Resolver
}

type Settings struct {
	Address        string
	StreamInterval time.Duration
	CaptureBurst   int64
	CaptureRefill  time.Duration
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

type Option func(*Server)

// WithClock replaces the clock the capture rate limit refills against.
func WithClock(clock ratelimit.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithSleep replaces the pause between live view frames.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(s *Server) {
		s.sleep = sleep
	}
}

type Server struct {
	capturer   Capturer
	settings   Settings
	clock      ratelimit.Clock
	sleep      func(context.Context, time.Duration) error
	bucket     *ratelimit.Bucket
	busyLog    *log.Limiter
	mux        *http.ServeMux
	httpServer *http.Server
}

func New(c Capturer, settings Settings, opts ...Option) *Server {
	if settings.CaptureBurst < 1 {
		settings.CaptureBurst = 1
	}
	if settings.CaptureRefill <= 0 {
		settings.CaptureRefill = time.Minute
	}

	s := Server{
		capturer: c,
		settings: settings,
		clock:    realClock{},
		sleep:    camera.SleepContext,
		busyLog:  log.NewLimiter(busyLogInterval, log.Debug),
		mux:      http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	// one capture token comes back every refill period
	s.bucket = ratelimit.NewBucketWithQuantumAndClock(settings.CaptureRefill, settings.CaptureBurst, 1, s.clock)

	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:    settings.Address,
		Handler: s.mux,
	}
	return &s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/", s.handleStream)
	s.mux.HandleFunc("/capture", s.handleCapture)
	s.mux.HandleFunc("/snap", s.handleCapture)
	s.mux.HandleFunc("/download", s.handleDownload)
	s.mux.HandleFunc("/files", s.handleFiles)
	s.mux.HandleFunc("/sd_status", s.handleStatus)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe blocks until the server fails or is shut down.
func (s *Server) ListenAndServe() error {
	log.Info("Starting HTTP server on %s", s.settings.Address)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return xerror.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("Shutting down HTTP server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return xerror.Errorf("unable to shutdown http server: %w", err)
	}
	return nil
}
