package stilld

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/tauraamui/stilldaemon/pkg/camera"
	"github.com/tauraamui/stilldaemon/pkg/camera/camerabackend"
	"github.com/tauraamui/stilldaemon/pkg/capture"
	"github.com/tauraamui/stilldaemon/pkg/configdef"
	"github.com/tauraamui/stilldaemon/pkg/dbusapi"
	"github.com/tauraamui/stilldaemon/pkg/flash"
	"github.com/tauraamui/stilldaemon/pkg/log"
	"github.com/tauraamui/stilldaemon/pkg/stilld/process"
	"github.com/tauraamui/stilldaemon/pkg/storage"
	"github.com/tauraamui/stilldaemon/pkg/timesync"
	"github.com/tauraamui/stilldaemon/pkg/web"
	"github.com/tauraamui/xerror"
)

var fs = afero.NewOsFs()

var (
	openLight    = flash.Open
	startDBusAPI = func(c dbusapi.Capturer) (closer, error) { return dbusapi.Start(c) }
)

type closer interface {
	Close() error
}

type Server interface {
	Connect() error
	ConnectWithCancel(context.Context) error
	LoadConfiguration() error
	SetupProcesses()
	RunProcesses()
	Capturer() *capture.Subsystem
	Shutdown() chan interface{}
}

type Option func(*server)

// WithBackend overrides the backend named in the configuration.
func WithBackend(b camera.Backend) Option {
	return func(s *server) {
		s.backend = b
	}
}

func NewServer(cr configdef.Resolver, opts ...Option) Server {
	s := server{configResolver: cr}
	for _, opt := range opts {
		opt(&s)
	}
	return &s
}

type server struct {
	configResolver configdef.Resolver
	backend        camera.Backend
	shutdownDone   chan interface{}
	config         configdef.Values
	mu             sync.Mutex
	subsystem      *capture.Subsystem
	web            *web.Server
	dbus           closer
	processes      []process.Process
}

func (s *server) Connect() error {
	return s.connect(context.Background())
}

func (s *server) ConnectWithCancel(cancel context.Context) error {
	return s.connect(cancel)
}

func (s *server) connect(cancel context.Context) error {
	s.shutdownDone = make(chan interface{})

	s.mu.Lock()
	defer s.mu.Unlock()

	cam := s.config.Camera
	backend := s.backend
	if backend == nil {
		backend = camerabackend.Resolve(cam.Backend)
	}

	log.Info("Connecting to camera: [%s]...", cam.Device)
	p, err := camera.ConnectWithCancel(cancel, backend, camera.Settings{
		Device:     cam.Device,
		Dimensions: camera.Dimensions{W: cam.Width, H: cam.Height},
	})
	if err != nil {
		return err
	}

	light, err := openLight(cam.FlashPin)
	if err != nil {
		p.Close()
		return err
	}

	s.subsystem = capture.New(
		p, s.resolver(), captureSettings(cam, s.config.Storage),
		capture.WithLight(light),
		capture.WithTimeTrust(timeTrust(s.config.TimeSource)),
	)

	if err := s.subsystem.Init(cancel); err != nil {
		p.Close()
		return err
	}
	log.Info("Connected successfully to camera: [%s]", p.UUID())
	s.subsystem.Resolver().DebugList()
	return nil
}

func (s *server) resolver() *storage.Resolver {
	st := s.config.Storage
	// the card is only ever seen through its volume, never the host root
	volume := afero.NewBasePathFs(fs, st.VolumePath)

	medium := storage.FixedMedium(storage.CardUnknown)
	if len(st.CardDevice) > 0 {
		medium = storage.NewDeviceMedium(fs, st.CardDevice)
	}
	return storage.NewResolver(volume, medium, st.MountCandidates...)
}

func captureSettings(cam configdef.Camera, st configdef.Storage) capture.Settings {
	return capture.Settings{
		MaxRetries:         cam.MaxRetries,
		RetryDelay:         millis(cam.RetryDelayMS),
		GuardTimeout:       millis(cam.GuardTimeoutMS),
		StreamGuardTimeout: millis(cam.StreamGuardTimeoutMS),
		PreLightDelay:      millis(cam.PreLightDelayMS),
		PostLightDelay:     millis(cam.PostLightDelayMS),
		TranscodeThreshold: cam.TranscodeThresholdBytes,
		JPEGQuality:        cam.JPEGQuality,
		MaxFilesToKeep:     st.MaxFilesToKeep,
	}
}

func timeTrust(source string) capture.TimeTrust {
	switch source {
	case configdef.TimeSourceTrusted:
		return timesync.Static(true)
	case configdef.TimeSourceUntrusted:
		return timesync.Static(false)
	default:
		return timesync.NewTimedated()
	}
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func (s *server) LoadConfiguration() error {
	config, err := s.configResolver.Resolve()
	if err != nil {
		return xerror.Errorf("unable to load configuration: %w", err)
	}

	s.config = config
	return nil
}

func (s *server) Capturer() *capture.Subsystem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subsystem
}

func (s *server) shutdown() {
	s.shutdownProcesses()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dbus != nil {
		if err := s.dbus.Close(); err != nil {
			log.Error("unable to release D-Bus name: %v", err)
		}
	}
	if s.subsystem != nil {
		log.Warn("Closing camera connection...")
		ctx, cancel := context.WithTimeout(context.Background(), s.subsystem.Settings().GuardTimeout+time.Second)
		defer cancel()
		if err := s.subsystem.Close(ctx); err != nil {
			log.Error("%v", err)
		}
	}
	if s.shutdownDone == nil {
		s.shutdownDone = make(chan interface{})
	}
	close(s.shutdownDone)
}

func (s *server) Shutdown() chan interface{} {
	s.shutdown()
	return s.shutdownDone
}
