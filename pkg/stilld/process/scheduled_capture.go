package process

import (
	"context"
	"time"

	"github.com/tauraamui/stilldaemon/pkg/capture"
	"github.com/tauraamui/stilldaemon/pkg/log"
)

const scheduledOrigin = "schedule"

var TimeNow = time.Now

type Capturer interface {
	Trigger(ctx context.Context, origin string) (capture.Record, bool)
}

type Window interface {
	IsOn(time.Time) bool
}

type ScheduleSettings struct {
	MinuteOfHour int
	PollInterval time.Duration
	Window       Window
}

type hourKey struct {
	year, yearDay, hour int
}

func keyOf(t time.Time) hourKey {
	return hourKey{year: t.Year(), yearDay: t.YearDay(), hour: t.Hour()}
}

// ScheduledCapture fires one capture per hour once the clock reaches the
// configured minute. The hour only counts as done after a capture
// succeeds, so a failed attempt is retried on the next poll.
func ScheduledCapture(c Capturer, settings ScheduleSettings) func(context.Context) []chan interface{} {
	var lastSuccess *hourKey
	return func(cancel context.Context) []chan interface{} {
		var stopSignals []chan interface{}
		log.Info("Starting scheduled captures at minute %d of each hour", settings.MinuteOfHour)
		stopping := make(chan interface{})
		go func(cancel context.Context, stopping chan interface{}) {
			ticker := time.NewTicker(settings.PollInterval)
			defer ticker.Stop()
			for {
				lastSuccess = scheduledCapture(cancel, c, settings, lastSuccess)
				select {
				case <-cancel.Done():
					close(stopping)
					return
				case <-ticker.C:
				}
			}
		}(cancel, stopping)
		stopSignals = append(stopSignals, stopping)
		return stopSignals
	}
}

func scheduledCapture(ctx context.Context, c Capturer, settings ScheduleSettings, lastSuccess *hourKey) *hourKey {
	now := TimeNow()
	if now.Minute() != settings.MinuteOfHour {
		return lastSuccess
	}

	key := keyOf(now)
	if lastSuccess != nil && *lastSuccess == key {
		return lastSuccess
	}

	if settings.Window != nil && !settings.Window.IsOn(now) {
		log.Debug("Scheduled capture skipped, outside of capture window")
		return lastSuccess
	}

	if _, ok := c.Trigger(ctx, scheduledOrigin); !ok {
		return lastSuccess
	}
	return &key
}
