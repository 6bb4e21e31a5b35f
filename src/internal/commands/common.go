package commands

import (
	"fmt"

	"github.com/maksimkurb/netpolicy/src/internal/api"
	"github.com/maksimkurb/netpolicy/src/internal/config"
	"github.com/maksimkurb/netpolicy/src/internal/core"
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	ConfigPath string
	Verbose    bool
	Version    api.VersionInfo
}

// loadAndValidateConfigOrFail loads configuration from file and validates it.
func loadAndValidateConfigOrFail(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %v", err)
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	return cfg, nil
}

// newDependencies builds the store and the registry for a one-shot command.
// Read-only commands skip the profile lock so they work next to a running
// daemon.
func newDependencies(ctx *AppContext, cfg *config.Config, readOnly bool) (*core.AppDependencies, error) {
	deps, err := core.NewAppDependencies(core.AppConfig{
		Config:             cfg,
		ApplicationVersion: ctx.Version.Version,
		DisableProfileLock: readOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open profile %s: %w", cfg.GetAbsProfileDir(), err)
	}
	return deps, nil
}
