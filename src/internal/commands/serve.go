package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maksimkurb/netpolicy/src/internal/api"
	"github.com/maksimkurb/netpolicy/src/internal/config"
	"github.com/maksimkurb/netpolicy/src/internal/core"
	"github.com/maksimkurb/netpolicy/src/internal/log"
)

const shutdownTimeout = 10 * time.Second

func CreateServeCommand() *ServeCommand {
	sc := &ServeCommand{
		fs: flag.NewFlagSet("serve", flag.ExitOnError),
	}

	sc.fs.StringVar(&sc.BindAddr, "bind", "", "Address of the local API (overrides general.api_bind_address)")
	sc.fs.BoolVar(&sc.CreateConfig, "create-config", false, "Write a default configuration file if none exists")

	return sc
}

// ServeCommand runs the daemon: the option watcher and the local API.
type ServeCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config

	BindAddr     string
	CreateConfig bool

	deps      *core.AppDependencies
	server    *api.Server
	apiRunner *RestartableRunner
	cfgRunner *RestartableRunner
}

func (s *ServeCommand) Name() string {
	return s.fs.Name()
}

func (s *ServeCommand) Init(args []string, ctx *AppContext) error {
	s.ctx = ctx

	if err := s.fs.Parse(args); err != nil {
		return err
	}

	if s.CreateConfig {
		if _, err := os.Stat(ctx.ConfigPath); errors.Is(err, os.ErrNotExist) {
			if _, err := config.CreateDefaultConfig(ctx.ConfigPath); err != nil {
				return err
			}
		}
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	s.cfg = cfg

	if s.BindAddr == "" {
		s.BindAddr = cfg.General.GetAPIBindAddress()
	}

	return nil
}

func (s *ServeCommand) Run() error {
	log.Infof("Starting netpolicy %s...", s.ctx.Version.Version)

	deps, err := newDependencies(s.ctx, s.cfg, false)
	if err != nil {
		return err
	}
	s.deps = deps

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	if err := s.startWatcher(ctx); err != nil {
		log.Errorf("Failed to start configuration watcher: %v", err)
		log.Warnf("Configuration changes will only be picked up via the API")
	}

	if err := s.startAPIServer(ctx); err != nil {
		s.shutdown()
		return err
	}

	log.Infof("Service started successfully.")
	log.Infof("Send SIGHUP to reload the configuration file")

	var apiDone <-chan struct{}
	if s.apiRunner != nil {
		apiDone = s.apiRunner.Done()
	}

	for {
		select {
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGHUP:
				log.Infof("Received SIGHUP signal, reloading configuration...")
				s.reload()
			default:
				log.Infof("Received signal %v, shutting down...", sig)
				return s.shutdown()
			}
		case <-apiDone:
			err := s.apiRunner.Status().LastError
			s.shutdown()
			return fmt.Errorf("API server stopped: %v", err)
		}
	}
}

func (s *ServeCommand) startWatcher(ctx context.Context) error {
	watcher := s.deps.Watcher()
	if watcher == nil {
		return nil
	}
	if _, err := watcher.Check(); err != nil {
		log.Warnf("Initial configuration check failed: %v", err)
	}

	s.cfgRunner = NewRestartableRunner(RunnerConfig{
		Name:           "Config watcher",
		RestartBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
	}, watcher.Run)

	return s.cfgRunner.Start(ctx)
}

func (s *ServeCommand) startAPIServer(ctx context.Context) error {
	log.Infof("Starting netpolicy API server on %s", s.BindAddr)
	log.Infof("Access restricted to loopback clients only")

	router := api.NewRouter(s.deps, s.ctx.Version)
	s.server = api.NewServer(s.BindAddr, router)

	s.apiRunner = NewRestartableRunner(RunnerConfig{
		Name:           "API server",
		MaxRestarts:    5,
		RestartBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
	}, func(runCtx context.Context) error {
		return s.server.Start()
	})

	return s.apiRunner.Start(ctx)
}

func (s *ServeCommand) reload() {
	watcher := s.deps.Watcher()
	if watcher == nil {
		log.Warnf("Configuration is not backed by a file, nothing to reload")
		return
	}
	changed, err := watcher.Check()
	switch {
	case err != nil:
		log.Errorf("Failed to reload configuration: %v", err)
	case !changed:
		log.Infof("Configuration file is unchanged")
	}
}

// shutdown stops the API, the watcher and the registry, in that order.
func (s *ServeCommand) shutdown() error {
	log.Infof("Shutting down netpolicy...")

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := s.server.Stop(ctx); err != nil {
			log.Errorf("Failed to stop API server: %v", err)
		}
		cancel()
	}
	if s.apiRunner != nil {
		if err := s.apiRunner.Stop(); err != nil {
			log.Errorf("%v", err)
		}
	}
	if s.cfgRunner != nil {
		if err := s.cfgRunner.Stop(); err != nil {
			log.Errorf("%v", err)
		}
	}

	if err := s.deps.Close(); err != nil {
		log.Errorf("Failed to close the profile: %v", err)
		return err
	}

	log.Infof("Shutdown complete")
	return nil
}
