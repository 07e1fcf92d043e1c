package camera

import (
	"context"
	"time"

	"github.com/tauraamui/stilldaemon/pkg/log"
	"github.com/tauraamui/xerror"
)

// Source hands out frames from a peripheral, discarding anything the
// peripheral gives back that cannot be persisted or streamed.
type Source struct {
	p     Peripheral
	sleep func(context.Context, time.Duration) error
}

type Option func(*Source)

// WithSleep replaces the delay used between grab attempts.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(s *Source) {
		s.sleep = sleep
	}
}

func NewSource(p Peripheral, opts ...Option) *Source {
	s := &Source{p: p, sleep: SleepContext}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Peripheral() Peripheral {
	return s.p
}

// AcquireFresh throws away whatever the peripheral still has queued from
// before this call, then grabs until it gets a non-empty frame.
func (s *Source) AcquireFresh(ctx context.Context, maxRetries int, retryDelay time.Duration) (Frame, error) {
	s.flush()
	return s.acquire(ctx, maxRetries, retryDelay)
}

// Acquire grabs until it gets a non-empty frame without flushing first.
func (s *Source) Acquire(ctx context.Context, maxRetries int, retryDelay time.Duration) (Frame, error) {
	return s.acquire(ctx, maxRetries, retryDelay)
}

func (s *Source) flush() {
	if b, ok := s.p.(Buffered); ok && !b.HasBuffered() {
		return
	}

	f, err := s.p.Grab()
	if err != nil {
		log.Debug("Flushing stale frame from camera [%s] failed: %v", s.p.UUID(), err)
	}
	if f != nil {
		f.Close()
	}
}

func (s *Source) acquire(ctx context.Context, maxRetries int, retryDelay time.Duration) (Frame, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, xerror.Errorf("frame acquisition cancelled: %w", err)
		}

		f, err := s.p.Grab()
		switch {
		case err != nil:
			if f != nil {
				f.Close()
			}
			lastErr = err
		case f == nil:
			lastErr = xerror.New("camera returned no frame")
		case f.Len() == 0:
			f.Close()
			lastErr = ErrEmptyFrame
		default:
			return f, nil
		}

		log.Debug("Discarding frame attempt %d/%d: %v", attempt, maxRetries, lastErr)

		if attempt < maxRetries && retryDelay > 0 {
			if err := s.sleep(ctx, retryDelay); err != nil {
				return nil, xerror.Errorf("frame acquisition cancelled: %w", err)
			}
		}
	}

	return nil, xerror.Errorf(
		"gave up after %d attempts: %w", maxRetries, ErrNoFrame,
	).AsKind(KindNoFrame).WithParam("last_error", lastErr)
}

// SleepContext waits for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
