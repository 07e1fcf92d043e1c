package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	arg "github.com/alexflint/go-arg"
	systemd "github.com/coreos/go-systemd/daemon"
	"github.com/tacusci/logging/v2"
	"github.com/takama/daemon"
	"github.com/tauraamui/stilldaemon/pkg/camera/camerabackend"
	"github.com/tauraamui/stilldaemon/pkg/config"
	"github.com/tauraamui/stilldaemon/pkg/configdef"
	"github.com/tauraamui/stilldaemon/pkg/log"
	"github.com/tauraamui/stilldaemon/pkg/stilld"
)

const (
	name        = "still_daemon"
	description = "Still daemon which captures camera stills to removable storage and serves a live view"
	usage       = "Usage: stilldaemon setup | remove-setup | install | remove | start | stop | status"
)

var version = "<not set>"

type Args struct {
	Command    string `arg:"positional" help:"setup, remove-setup, install, remove, start, stop or status"`
	ConfigFile string `arg:"-c,--config" help:"path to configuration file"`
	Backend    string `arg:"-b,--backend" help:"camera backend, overrides the configured one (opencv or mock)"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	arg.MustParse(&args)
	return args
}

type Service struct {
	daemon.Daemon
	args Args
}

// Setup writes a default configuration file unless one exists already.
func (service *Service) Setup() (string, error) {
	log.Info("Setting up stilldaemon service...")

	err := config.CreatorAt(service.args.ConfigFile).Create()
	if err != nil {
		if !errors.Is(err, configdef.ErrConfigAlreadyExists) {
			return "", err
		}
		log.Error(err.Error())
	}

	return "Setup successful...", nil
}

func (service *Service) RemoveSetup() (string, error) {
	log.Info("Removing setup for stilldaemon service...")
	err := config.DestroyerAt(service.args.ConfigFile).Destroy()
	if err != nil {
		log.Error("unable to delete config file: %s", err.Error())
	}

	return "Removing setup successful...", nil
}

func (service *Service) Manage() (string, error) {
	switch service.args.Command {
	case "":
	case "setup":
		return service.Setup()
	case "remove-setup":
		return service.RemoveSetup()
	case "install":
		return service.Install()
	case "remove":
		return service.Remove()
	case "start":
		return service.Start()
	case "stop":
		return service.Stop()
	case "status":
		return service.Status()
	default:
		return usage, nil
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	log.Info("Starting still daemon %s...", version)

	var opts []stilld.Option
	if len(service.args.Backend) > 0 {
		opts = append(opts, stilld.WithBackend(camerabackend.Resolve(service.args.Backend)))
	}
	server := stilld.NewServer(config.ResolverAt(service.args.ConfigFile), opts...)
	if err := server.LoadConfiguration(); err != nil {
		return "", err
	}

	ctx, cancelStartup := context.WithCancel(context.Background())
	go startupServer(ctx, server)

	killSignal := <-interrupt
	fmt.Print("\r")
	log.Error("Received signal: %s", killSignal)

	notify("STOPPING=1")
	cancelStartup()
	log.Info("Shutting down server...")
	<-server.Shutdown()

	return "Shutdown successful... BYE! 👋", nil
}

// startupServer treats a camera which cannot be brought up as fatal, a
// restart by the service manager is the only recovery.
func startupServer(ctx context.Context, server stilld.Server) {
	if err := server.ConnectWithCancel(ctx); err != nil {
		log.Fatal(err.Error())
		return
	}
	server.SetupProcesses()
	server.RunProcesses()
	notify("READY=1")
}

func notify(state string) {
	if _, err := systemd.SdNotify(false, state); err != nil {
		log.Debug("sd_notify %s failed: %v", state, err)
	}
}

func init() {
	logging.CallbackLabelLevel = 5
	logging.ColorLogLevelLabelOnly = true
	log.SetLevelFromString(strings.ToLower(os.Getenv("STILL_DAEMON_LOGGING_LEVEL")))
}

func main() {
	args := procArgs()

	daemonType := daemon.SystemDaemon
	if runtime.GOOS == "darwin" {
		daemonType = daemon.UserAgent
	}

	srv, err := daemon.New(name, description, daemonType)
	if err != nil {
		logging.Error(err.Error()) //nolint
		os.Exit(1)
	}

	service := &Service{Daemon: srv, args: args}
	status, err := service.Manage()
	if err != nil {
		logging.Error(err.Error()) //nolint
		os.Exit(1)
	}

	logging.Info(status) //nolint
}
