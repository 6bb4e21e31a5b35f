package core

import (
	"net/http"
	"time"

	"github.com/maksimkurb/netpolicy/src/internal/config"
	"github.com/maksimkurb/netpolicy/src/internal/log"
	"github.com/maksimkurb/netpolicy/src/internal/registry"
	"github.com/maksimkurb/netpolicy/src/internal/utils"
)

// AppDependencies is a dependency injection container that holds all application dependencies.
//
// Usage:
//
//	deps, err := core.NewAppDependencies(core.AppConfig{Config: cfg})
//	if err != nil {
//	    return err
//	}
//	defer deps.Close()
//	s, err := deps.Registry().CreateSession(false, false, nil)
type AppDependencies struct {
	store    *config.Store
	registry *registry.Registry
	watcher  *config.Watcher
	lock     *utils.ProfileLock
}

// AppConfig holds configuration for creating application dependencies.
type AppConfig struct {
	// Config is the loaded configuration. Required.
	Config *config.Config

	// ApplicationVersion is substituted into user-agent values.
	ApplicationVersion string

	// DisableProfileLock skips locking the profile directory. Read-only
	// commands use it so they can run next to a serving instance.
	DisableProfileLock bool

	// DisableStore starts the registry without an option source, so it
	// serves built-in defaults.
	DisableStore bool

	// Transport overrides the network transport of sessions.
	Transport http.RoundTripper
}

// NewAppDependencies creates the store and the registry and initializes the
// registry. A registry initialization failure is logged, not returned: the
// registry keeps working with built-in defaults.
func NewAppDependencies(cfg AppConfig) (*AppDependencies, error) {
	profileDir := cfg.Config.GetAbsProfileDir()

	var lock *utils.ProfileLock
	if !cfg.DisableProfileLock {
		l, err := utils.LockProfile(profileDir)
		if err != nil {
			return nil, err
		}
		lock = l
	}

	store := config.NewStore(cfg.Config)

	var source registry.OptionSource
	if !cfg.DisableStore {
		source = store
	}
	reg := registry.New(registry.Options{
		Source:             source,
		UserAgentsPath:     cfg.Config.GetAbsUserAgentsPath(),
		ProfileDir:         profileDir,
		ApplicationVersion: cfg.ApplicationVersion,
		Transport:          cfg.Transport,
	})
	if err := reg.Initialize(); err != nil {
		log.Warnf("Network policy registry runs on built-in defaults: %v", err)
	}

	var watcher *config.Watcher
	if path := cfg.Config.GetConfigFilePath(); path != "" {
		interval := time.Duration(cfg.Config.General.GetConfigPollIntervalSeconds()) * time.Second
		watcher = config.NewWatcher(path, store, interval)
	}

	return &AppDependencies{
		store:    store,
		registry: reg,
		watcher:  watcher,
		lock:     lock,
	}, nil
}

// NewTestDependencies creates a container from prebuilt parts.
func NewTestDependencies(store *config.Store, reg *registry.Registry) *AppDependencies {
	return &AppDependencies{
		store:    store,
		registry: reg,
	}
}

// Store returns the option store.
func (d *AppDependencies) Store() *config.Store {
	return d.store
}

// Registry returns the network policy registry.
func (d *AppDependencies) Registry() *registry.Registry {
	return d.registry
}

// Watcher returns the config file watcher, nil when the configuration is
// not backed by a file.
func (d *AppDependencies) Watcher() *config.Watcher {
	return d.watcher
}

// Close shuts the registry down and releases the profile lock.
func (d *AppDependencies) Close() error {
	err := d.registry.Close()
	if d.lock != nil {
		if unlockErr := d.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}
