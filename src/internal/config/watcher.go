package config

import (
	"context"
	"sync"
	"time"

	"github.com/maksimkurb/netpolicy/src/internal/hashing"
	"github.com/maksimkurb/netpolicy/src/internal/log"
)

// Watcher polls the configuration file and applies edits to a Store.
// Changes are detected by comparing MD5 checksums of the file content.
type Watcher struct {
	configPath string
	store      *Store
	interval   time.Duration

	mu       sync.Mutex
	lastHash string
}

// NewWatcher creates a watcher. The current file content is taken as the
// baseline, so the first Check only reports edits made after this call.
func NewWatcher(configPath string, store *Store, interval time.Duration) *Watcher {
	w := &Watcher{
		configPath: configPath,
		store:      store,
		interval:   interval,
	}
	if hash, err := hashing.FileChecksum(configPath); err == nil {
		w.lastHash = hash
	}
	return w
}

// Check reloads the file if its checksum changed. It returns true when the
// new configuration was applied. Invalid files are reported and ignored, so
// the store keeps the last good configuration.
func (w *Watcher) Check() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	hash, err := hashing.FileChecksum(w.configPath)
	if err != nil {
		return false, err
	}
	if hash == w.lastHash {
		return false, nil
	}

	cfg, err := LoadConfig(w.configPath)
	if err != nil {
		return false, err
	}
	if err := cfg.ValidateConfig(); err != nil {
		// Remember the hash so an invalid file is reported once
		w.lastHash = hash
		return false, err
	}

	w.lastHash = hash
	changes := w.store.Apply(cfg)
	log.Infof("Configuration reloaded, %d option(s) changed", len(changes))
	return true, nil
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Check(); err != nil {
				log.Warnf("Failed to reload configuration: %v", err)
			}
		}
	}
}
