// Package guard serialises access to the camera peripheral between the
// live stream and still capture paths.
package guard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tauraamui/xerror"
)

const (
	KindBusy    = xerror.Kind("guard_busy")
	KindTimeout = xerror.Kind("guard_timeout")
)

var (
	ErrBusy    = errors.New("camera is held by another operation")
	ErrTimeout = errors.New("timed out waiting for camera")
)

type State int

const (
	Free State = iota
	Held
)

func (s State) String() string {
	if s == Held {
		return "held"
	}
	return "free"
}

// Guard is a single permit. There is no fairness beyond what the Go
// scheduler gives waiting goroutines.
type Guard struct {
	permit chan struct{}
}

func New() *Guard {
	g := Guard{permit: make(chan struct{}, 1)}
	g.permit <- struct{}{}
	return &g
}

// Acquire waits up to timeout for the permit. A zero timeout only takes
// the permit if it is free right now.
func (g *Guard) Acquire(ctx context.Context, timeout time.Duration) (*Token, error) {
	select {
	case <-g.permit:
		return &Token{g: g}, nil
	default:
	}

	if timeout <= 0 {
		return nil, xerror.Errorf("unable to take camera: %w", ErrBusy).AsKind(KindBusy)
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-g.permit:
		return &Token{g: g}, nil
	case <-t.C:
		return nil, xerror.Errorf(
			"unable to take camera: %w", ErrTimeout,
		).AsKind(KindTimeout).WithParam("timeout", timeout)
	case <-ctx.Done():
		return nil, xerror.Errorf("unable to take camera: %w", ctx.Err())
	}
}

func (g *Guard) State() State {
	if len(g.permit) == 0 {
		return Held
	}
	return Free
}

// Token is proof of holding the guard. Release is safe to call more than
// once, only the first call gives the permit back.
type Token struct {
	g    *Guard
	once sync.Once
}

func (t *Token) Release() {
	t.once.Do(func() {
		t.g.permit <- struct{}{}
	})
}
