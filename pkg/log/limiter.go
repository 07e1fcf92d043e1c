package log

import (
	"fmt"
	"sync"
	"time"
)

// Limiter drops a message if the exact same message was already
// emitted within the configured interval.
type Limiter struct {
	interval time.Duration
	logf     func(string, ...interface{})
	nowFunc  func() time.Time

	mu            sync.Mutex
	previousEntry string
	previousTime  time.Time
}

// NewLimiter wraps one of the package log funcs, e.g. NewLimiter(time.Minute, log.Warn).
func NewLimiter(interval time.Duration, logf func(string, ...interface{})) *Limiter {
	return &Limiter{
		interval: interval,
		logf:     logf,
		nowFunc:  time.Now,
	}
}

func (l *Limiter) Printf(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)

	l.mu.Lock()
	now := l.nowFunc()
	if msg == l.previousEntry && now.Sub(l.previousTime) < l.interval {
		l.mu.Unlock()
		return
	}
	l.previousEntry = msg
	l.previousTime = now
	l.mu.Unlock()

	l.logf("%s", msg)
}
