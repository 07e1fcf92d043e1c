package log

import (
	"fmt"
	"testing"
	"time"

	"github.com/matryer/is"
)

type recorder struct {
	lines []string
}

func (r *recorder) logf(format string, a ...interface{}) {
	r.lines = append(r.lines, fmt.Sprintf(format, a...))
}

func TestLimiterSuppressesRepeatsWithinInterval(t *testing.T) {
	is := is.New(t)

	rec := recorder{}
	now := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiter(time.Minute, rec.logf)
	limiter.nowFunc = func() time.Time { return now }

	limiter.Printf("camera busy: %d", 1)
	now = now.Add(10 * time.Second)
	limiter.Printf("camera busy: %d", 1)
	now = now.Add(10 * time.Second)
	limiter.Printf("camera busy: %d", 1)

	is.Equal(rec.lines, []string{"camera busy: 1"})
}

func TestLimiterLetsDifferentMessagesThrough(t *testing.T) {
	is := is.New(t)

	rec := recorder{}
	now := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiter(time.Minute, rec.logf)
	limiter.nowFunc = func() time.Time { return now }

	limiter.Printf("first")
	limiter.Printf("second")
	limiter.Printf("first")

	is.Equal(rec.lines, []string{"first", "second", "first"})
}

func TestLimiterEmitsRepeatAfterIntervalPasses(t *testing.T) {
	is := is.New(t)

	rec := recorder{}
	now := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiter(time.Minute, rec.logf)
	limiter.nowFunc = func() time.Time { return now }

	limiter.Printf("stream paused")
	now = now.Add(61 * time.Second)
	limiter.Printf("stream paused")

	is.Equal(len(rec.lines), 2)
}
