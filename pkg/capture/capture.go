// Package capture owns the camera access guard and everything a still
// capture or stream frame needs while holding it.
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tauraamui/stilldaemon/pkg/camera"
	"github.com/tauraamui/stilldaemon/pkg/filename"
	"github.com/tauraamui/stilldaemon/pkg/guard"
	"github.com/tauraamui/stilldaemon/pkg/log"
	"github.com/tauraamui/stilldaemon/pkg/storage"
	"github.com/tauraamui/xerror"
)

// Light is switched on for the duration of a still capture.
type Light interface {
	On() error
	Off() error
}

// TimeTrust reports whether the wall clock is good enough to name
// captures by.
type TimeTrust interface {
	Trusted() bool
}

type Record struct {
	ID        string
	Name      string
	Path      string
	Size      int
	Timestamp time.Time
}

type noLight struct{}

func (noLight) On() error  { return nil }
func (noLight) Off() error { return nil }

type untrusted struct{}

func (untrusted) Trusted() bool { return false }

type Option func(*Subsystem)

func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(s *Subsystem) {
		s.sleep = sleep
	}
}

func WithNow(now func() time.Time) Option {
	return func(s *Subsystem) {
		s.now = now
	}
}

func WithLight(l Light) Option {
	return func(s *Subsystem) {
		s.light = l
	}
}

func WithTimeTrust(t TimeTrust) Option {
	return func(s *Subsystem) {
		s.trust = t
	}
}

func WithPolicy(p *filename.Policy) Option {
	return func(s *Subsystem) {
		s.policy = p
	}
}

type Subsystem struct {
	settings  Settings
	guard     *guard.Guard
	source    *camera.Source
	policy    *filename.Policy
	resolver  *storage.Resolver
	writer    *storage.Writer
	retention *storage.Retention
	light     Light
	trust     TimeTrust
	sleep     func(context.Context, time.Duration) error
	now       func() time.Time

	mu   sync.Mutex
	last *Record
}

func New(p camera.Peripheral, resolver *storage.Resolver, settings Settings, opts ...Option) *Subsystem {
	s := Subsystem{
		settings:  settings,
		guard:     guard.New(),
		policy:    filename.New(),
		resolver:  resolver,
		writer:    storage.NewWriter(resolver.Fs()),
		retention: storage.NewRetention(resolver),
		light:     noLight{},
		trust:     untrusted{},
		sleep:     camera.SleepContext,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	s.source = camera.NewSource(p, camera.WithSleep(s.sleep))
	return &s
}

func (s *Subsystem) Guard() *guard.Guard { return s.guard }

func (s *Subsystem) Resolver() *storage.Resolver { return s.resolver }

func (s *Subsystem) Settings() Settings { return s.settings }

// Init brings up the peripheral. Failing to get the guard here means
// something else already owns the camera, which callers treat as fatal.
func (s *Subsystem) Init(ctx context.Context) error {
	tok, err := s.guard.Acquire(ctx, s.settings.GuardTimeout)
	if err != nil {
		return xerror.Errorf("unable to initialise camera: %w", err)
	}
	defer tok.Release()

	p := s.source.Peripheral()
	if err := p.Init(); err != nil {
		return xerror.Errorf("unable to initialise camera [%s]: %w", p.UUID(), err)
	}
	return nil
}

func (s *Subsystem) Close(ctx context.Context) error {
	tok, err := s.guard.Acquire(ctx, s.settings.GuardTimeout)
	if err != nil {
		return xerror.Errorf("unable to close camera: %w", err)
	}
	defer tok.Release()
	return s.source.Peripheral().Close()
}

// Capture runs one still capture cycle. The mount root and time trust
// are settled before the camera is touched at all, so nothing outside
// the capture itself runs while the guard is held.
func (s *Subsystem) Capture(ctx context.Context) (Record, error) {
	root, err := s.resolver.Resolve()
	if err != nil {
		return Record{}, err
	}
	timeTrusted := s.trust.Trusted()

	tok, err := s.guard.Acquire(ctx, s.settings.GuardTimeout)
	if err != nil {
		return Record{}, err
	}
	defer tok.Release()

	frame, err := s.grabStill(ctx)
	if err != nil {
		return Record{}, err
	}
	defer frame.Close()

	out, err := s.encode(frame)
	if err != nil {
		return Record{}, err
	}
	if out != frame {
		defer out.Close()
	}

	now := s.now()
	name := s.name(now, timeTrusted, out.Format())
	path := root.Join(name)

	written, err := s.writer.Write(out, path)
	if err != nil {
		return Record{}, err
	}

	if removed := s.retention.Enforce(s.settings.MaxFilesToKeep); len(removed) > 0 {
		log.Debug("Retention removed %d file(s)", len(removed))
	}

	rec := Record{
		ID:        uuid.NewString(),
		Name:      name,
		Path:      path,
		Size:      written,
		Timestamp: now,
	}
	s.mu.Lock()
	s.last = &rec
	s.mu.Unlock()

	return rec, nil
}

// raw frames kept under the transcode threshold get their own extension
func (s *Subsystem) name(now time.Time, timeTrusted bool, format camera.PixelFormat) string {
	if format == camera.PixelFormatJPEG {
		return s.policy.Name(now, timeTrusted)
	}
	return s.policy.NameAs(now, timeTrusted, format.Extension())
}

func (s *Subsystem) grabStill(ctx context.Context) (camera.Frame, error) {
	if err := s.light.On(); err != nil {
		log.Warn("Unable to switch capture light on: %v", err)
	}

	if err := s.pause(ctx, s.settings.PreLightDelay); err != nil {
		s.lightOff()
		return nil, err
	}

	frame, err := s.source.AcquireFresh(ctx, s.settings.MaxRetries, s.settings.RetryDelay)
	s.lightOff()
	if err != nil {
		return nil, err
	}

	if err := s.pause(ctx, s.settings.PostLightDelay); err != nil {
		frame.Close()
		return nil, err
	}
	return frame, nil
}

func (s *Subsystem) lightOff() {
	if err := s.light.Off(); err != nil {
		log.Warn("Unable to switch capture light off: %v", err)
	}
}

func (s *Subsystem) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return s.sleep(ctx, d)
}

func (s *Subsystem) encode(frame camera.Frame) (camera.Frame, error) {
	if !camera.NeedsTranscode(frame, s.settings.TranscodeThreshold) {
		return frame, nil
	}
	return camera.Transcode(frame, s.settings.JPEGQuality)
}

// Trigger runs a capture on behalf of origin and logs the outcome rather
// than returning it.
func (s *Subsystem) Trigger(ctx context.Context, origin string) (Record, bool) {
	rec, err := s.Capture(ctx)
	if err != nil {
		log.Error("Capture requested by %s failed: %v", origin, err)
		return Record{}, false
	}
	log.Info("Capture [%s] requested by %s saved to %s (%d bytes)", rec.ID, origin, rec.Path, rec.Size)
	return rec, true
}

// StreamFrame grabs a frame for the live view and hands back a copy of
// its bytes. The frame is returned to the peripheral and the guard is
// released before this returns.
func (s *Subsystem) StreamFrame(ctx context.Context) ([]byte, error) {
	tok, err := s.guard.Acquire(ctx, s.settings.StreamGuardTimeout)
	if err != nil {
		return nil, err
	}
	defer tok.Release()

	frame, err := s.source.Acquire(ctx, s.settings.MaxRetries, s.settings.RetryDelay)
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	out, err := s.encode(frame)
	if err != nil {
		return nil, err
	}
	if out != frame {
		defer out.Close()
	}

	data := make([]byte, out.Len())
	copy(data, out.Data())
	return data, nil
}

func (s *Subsystem) LastCapture() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Record{}, false
	}
	return *s.last, true
}

// Status describes the storage medium and the last successful capture.
func (s *Subsystem) Status() string {
	status := s.resolver.Status().String()
	if rec, ok := s.LastCapture(); ok {
		return status + fmt.Sprintf("Last capture: %s (%d bytes) at %s\n", rec.Path, rec.Size, rec.Timestamp.Format(time.RFC3339))
	}
	return status + "Last capture: (none)\n"
}
