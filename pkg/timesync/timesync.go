// Package timesync reports whether the wall clock can be trusted for
// naming captures.
package timesync

import (
	"sync"
	"time"

	"github.com/godbus/dbus"
	"github.com/tauraamui/stilldaemon/pkg/log"
	"github.com/tauraamui/xerror"
)

const (
	timedateDest     = "org.freedesktop.timedate1"
	timedatePath     = "/org/freedesktop/timedate1"
	ntpSyncProperty  = "org.freedesktop.timedate1.NTPSynchronized"
	defaultCacheTime = 30 * time.Second
)

// Static always gives the same answer.
type Static bool

func (s Static) Trusted() bool { return bool(s) }

type propertyGetter interface {
	GetProperty(p string) (dbus.Variant, error)
}

var systemTimedate = func() (propertyGetter, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	return conn.Object(timedateDest, timedatePath), nil
}

// Timedated trusts the clock while systemd-timedated reports NTP as
// synchronised. Answers are cached briefly since the capture path asks
// on every capture.
type Timedated struct {
	mu       sync.Mutex
	obj      propertyGetter
	cacheFor time.Duration
	checked  time.Time
	synced   bool
	now      func() time.Time
}

func NewTimedated() *Timedated {
	return &Timedated{cacheFor: defaultCacheTime, now: time.Now}
}

func (t *Timedated) Trusted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if !t.checked.IsZero() && now.Sub(t.checked) < t.cacheFor {
		return t.synced
	}

	synced, err := t.query()
	if err != nil {
		log.Warn("Unable to query clock synchronisation, treating clock as untrusted: %v", err)
		synced = false
	}
	t.synced, t.checked = synced, now
	return synced
}

func (t *Timedated) query() (bool, error) {
	if t.obj == nil {
		obj, err := systemTimedate()
		if err != nil {
			return false, xerror.Errorf("unable to connect to system bus: %w", err)
		}
		t.obj = obj
	}

	v, err := t.obj.GetProperty(ntpSyncProperty)
	if err != nil {
		return false, xerror.Errorf("unable to read NTPSynchronized: %w", err)
	}

	synced, ok := v.Value().(bool)
	if !ok {
		return false, xerror.New("NTPSynchronized is not a bool").WithParam("signature", v.Signature().String())
	}
	return synced, nil
}
