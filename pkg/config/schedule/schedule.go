// Package schedule decides whether scheduled captures are switched on at
// a given moment from a weekly set of on and off times.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/tauraamui/xerror"
)

const clockLayout = "15:04:05"

// Clock is a time of day held as the offset from midnight, written as
// "HH:MM:SS" in config.
type Clock time.Duration

func ParseClock(value string) (Clock, error) {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return 0, xerror.Errorf("invalid time of day %q: %w", value, err)
	}
	return Clock(time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second), nil
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	parsed, err := ParseClock(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", c.String())), nil
}

func (c Clock) Hour() int { return int(time.Duration(c) / time.Hour) }

func (c Clock) Minute() int { return int(time.Duration(c) % time.Hour / time.Minute) }

func (c Clock) Second() int { return int(time.Duration(c) % time.Minute / time.Second) }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

// On places the clock on the calendar day of t.
func (c Clock) On(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, t.Location())
}

// OnOffTimes for loading up on off time entries
type OnOffTimes struct {
	Off *Clock `json:"off"`
	On  *Clock `json:"on"`
}

func (o OnOffTimes) empty() bool {
	return o.On == nil && o.Off == nil
}

type Week struct {
	Everyday  OnOffTimes `json:"everyday"`
	Monday    OnOffTimes `json:"monday"`
	Tuesday   OnOffTimes `json:"tuesday"`
	Wednesday OnOffTimes `json:"wednesday"`
	Thursday  OnOffTimes `json:"thursday"`
	Friday    OnOffTimes `json:"friday"`
	Saturday  OnOffTimes `json:"saturday"`
	Sunday    OnOffTimes `json:"sunday"`
}

// day returns the entries for a weekday, falling back to everyday when
// the weekday has none of its own.
func (w Week) day(d time.Weekday) OnOffTimes {
	var times OnOffTimes
	switch d {
	case time.Monday:
		times = w.Monday
	case time.Tuesday:
		times = w.Tuesday
	case time.Wednesday:
		times = w.Wednesday
	case time.Thursday:
		times = w.Thursday
	case time.Friday:
		times = w.Friday
	case time.Saturday:
		times = w.Saturday
	case time.Sunday:
		times = w.Sunday
	}
	if times.empty() {
		return w.Everyday
	}
	return times
}

type Schedule interface {
	IsOn(time.Time) bool
}

func NewSchedule(w Week) Schedule {
	return &schedule{week: w}
}

type schedule struct {
	week Week
}

// IsOn reports the state set by the most recent on or off entry at or
// before t. A week with no entries is always on.
func (s *schedule) IsOn(t time.Time) bool {
	// eight days back reaches t's own weekday from the week before
	for i := 0; i <= 7; i++ {
		day := t.AddDate(0, 0, -i)
		if state, found := lastState(t, day, s.week.day(day.Weekday())); found {
			return state
		}
	}
	return true
}

func lastState(t, day time.Time, times OnOffTimes) (state bool, found bool) {
	var latest time.Time
	consider := func(c *Clock, s bool) {
		if c == nil {
			return
		}
		at := c.On(day)
		if at.After(t) {
			return
		}
		if !found || at.After(latest) || (at.Equal(latest) && s) {
			latest, state, found = at, s, true
		}
	}
	consider(times.Off, false)
	consider(times.On, true)
	return
}
