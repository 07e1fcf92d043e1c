package camera

import (
	"context"

	"github.com/tauraamui/stilldaemon/pkg/log"
	"github.com/tauraamui/xerror"
)

func connect(ctx context.Context, backend Backend, settings Settings) (Peripheral, error) {
	p, err := backend.Open(ctx, settings.Device, settings.Dimensions)
	if err != nil {
		return nil, xerror.Errorf("unable to connect to camera [%s]: %w", settings.Device, err)
	}
	log.Debug("Connected to camera [%s] at %s", p.UUID(), settings.Device)
	return p, nil
}

// Connect opens the peripheral without initialising it, callers run
// Init while holding the access guard.
func Connect(backend Backend, settings Settings) (Peripheral, error) {
	return connect(context.Background(), backend, settings)
}

func ConnectWithCancel(cancel context.Context, backend Backend, settings Settings) (Peripheral, error) {
	return connect(cancel, backend, settings)
}
