package stilld_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/stilldaemon/pkg/camera"
	"github.com/tauraamui/stilldaemon/pkg/camera/camerabackend"
	"github.com/tauraamui/stilldaemon/pkg/configdef"
	"github.com/tauraamui/stilldaemon/pkg/dbusapi"
	"github.com/tauraamui/stilldaemon/pkg/stilld"
)

type testConfigResolver struct {
	values configdef.Values
	err    error
}

func (tcr testConfigResolver) Resolve() (configdef.Values, error) {
	return tcr.values, tcr.err
}

func testConfig() configdef.Values {
	return configdef.Values{
		TimeSource: configdef.TimeSourceUntrusted,
		Camera: configdef.Camera{
			Backend:        "mock",
			Device:         "/dev/video0",
			MaxRetries:     3,
			GuardTimeoutMS: 1000,
			JPEGQuality:    80,
			Width:          64,
			Height:         48,
		},
		Storage: configdef.Storage{
			VolumePath:      "/mnt/card",
			MountCandidates: []string{"/", "/sdcard"},
			MaxFilesToKeep:  10,
		},
		HTTP: configdef.HTTP{
			Address:              "127.0.0.1:0",
			StreamIntervalMS:     100,
			CaptureBurst:         1,
			CaptureRefillSeconds: 60,
		},
	}
}

type failingBackend struct{}

func (failingBackend) Open(context.Context, string, camera.Dimensions) (camera.Peripheral, error) {
	return nil, errors.New("no such device")
}

type fakeDBusService struct {
	mu     sync.Mutex
	closed bool
}

func (f *fakeDBusService) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type ServerTestSuite struct {
	suite.Suite
	fs      afero.Fs
	resetFs func()
}

func (suite *ServerTestSuite) SetupSuite() {
	logging.CurrentLoggingLevel = logging.SilentLevel
}

func (suite *ServerTestSuite) TearDownSuite() {
	logging.CurrentLoggingLevel = logging.WarnLevel
}

func (suite *ServerTestSuite) SetupTest() {
	suite.fs = afero.NewMemMapFs()
	suite.resetFs = stilld.OverloadFs(suite.fs)
	require.NoError(suite.T(), suite.fs.MkdirAll("/mnt/card/sdcard", 0755))
}

func (suite *ServerTestSuite) TearDownTest() {
	suite.resetFs()
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, &ServerTestSuite{})
}

func (suite *ServerTestSuite) TestNewServer() {
	s := stilld.NewServer(testConfigResolver{})
	suite.NotNil(s)
}

func (suite *ServerTestSuite) TestLoadConfigurationError() {
	s := stilld.NewServer(testConfigResolver{err: errors.New("missing file")})
	err := s.LoadConfiguration()
	suite.Require().Error(err)
	suite.Contains(err.Error(), "missing file")
}

func (suite *ServerTestSuite) TestConnectAndCapture() {
	t := suite.T()

	var infoLogs []string
	resetInfo := overloadInfoLog(func(format string, a ...interface{}) {
		infoLogs = append(infoLogs, fmt.Sprintf(format, a...))
	})
	defer resetInfo()

	s := stilld.NewServer(testConfigResolver{values: testConfig()})
	require.NoError(t, s.LoadConfiguration())
	require.NoError(t, s.Connect())

	rec, err := s.Capturer().Capture(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, "/sdcard/img_000001.jpg", rec.Path)

	exists, err := afero.Exists(suite.fs, "/mnt/card/sdcard/img_000001.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	<-s.Shutdown()
	assert.Contains(t, strings.Join(infoLogs, "\n"), "Connecting to camera: [/dev/video0]...")
}

func (suite *ServerTestSuite) TestStorageIsConfinedToVolume() {
	t := suite.T()
	require.NoError(t, afero.WriteFile(suite.fs, "/etc/passwd", []byte("root:x:0:0"), 0644))
	require.NoError(t, afero.WriteFile(suite.fs, "/bin", []byte("host"), 0644))

	s := stilld.NewServer(testConfigResolver{values: testConfig()}, stilld.WithBackend(camerabackend.Mock()))
	require.NoError(t, s.LoadConfiguration())
	require.NoError(t, s.Connect())
	defer func() { <-s.Shutdown() }()

	resolver := s.Capturer().Resolver()
	for _, name := range []string{"/etc/passwd", "etc/passwd", "/bin", "bin"} {
		_, _, err := resolver.Locate(name)
		assert.Error(t, err, name)
	}

	rec, err := s.Capturer().Capture(context.TODO())
	require.NoError(t, err)
	f, _, err := resolver.Locate(rec.Name)
	require.NoError(t, err)
	f.Close()

	exists, err := afero.Exists(suite.fs, "/bin")
	require.NoError(t, err)
	assert.True(t, exists)
}

func (suite *ServerTestSuite) TestConnectFailure() {
	s := stilld.NewServer(testConfigResolver{values: testConfig()}, stilld.WithBackend(failingBackend{}))
	suite.Require().NoError(s.LoadConfiguration())

	err := s.Connect()
	suite.Require().Error(err)
	suite.Contains(err.Error(), "unable to connect to camera [/dev/video0]")
	suite.Nil(s.Capturer())
	<-s.Shutdown()
}

func (suite *ServerTestSuite) TestProcessesRunAndStop() {
	t := suite.T()

	svc := &fakeDBusService{}
	resetDBus := stilld.OverloadStartDBusAPI(func(dbusapi.Capturer) (stilld.Closer, error) {
		return svc, nil
	})
	defer resetDBus()

	cfg := testConfig()
	cfg.DBus = true
	cfg.Schedule = configdef.Schedule{Enabled: true, MinuteOfHour: 0, PollSeconds: 30}

	s := stilld.NewServer(testConfigResolver{values: cfg})
	require.NoError(t, s.LoadConfiguration())
	require.NoError(t, s.Connect())

	s.SetupProcesses()
	s.RunProcesses()
	<-s.Shutdown()

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.True(t, svc.closed)
}

func (suite *ServerTestSuite) TestDBusFailureIsLogged() {
	t := suite.T()

	resetDBus := stilld.OverloadStartDBusAPI(func(dbusapi.Capturer) (stilld.Closer, error) {
		return nil, errors.New("no system bus")
	})
	defer resetDBus()

	var errorLogs []string
	resetError := overloadErrorLog(func(format string, a ...interface{}) {
		errorLogs = append(errorLogs, fmt.Sprintf(format, a...))
	})
	defer resetError()

	cfg := testConfig()
	cfg.DBus = true

	s := stilld.NewServer(testConfigResolver{values: cfg})
	require.NoError(t, s.LoadConfiguration())
	require.NoError(t, s.Connect())
	s.SetupProcesses()
	<-s.Shutdown()

	assert.Contains(t, errorLogs, "D-Bus trigger service unavailable: no system bus")
}
