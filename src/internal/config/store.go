package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/maksimkurb/netpolicy/src/internal/log"
)

// OptionChange describes a single changed option.
type OptionChange struct {
	Key      string
	OldValue any
	NewValue any
}

// OptionObserver is called once per changed option.
type OptionObserver func(change OptionChange)

// Store is the option source of the network policy registry. It keeps the
// effective option values of a Config and notifies observers on change.
type Store struct {
	// writeMu serializes mutations so that notifications for one change are
	// delivered before the next change starts.
	writeMu sync.Mutex

	mu        sync.RWMutex
	cfg       *Config
	values    map[string]any
	observers map[uint64]OptionObserver
	nextID    uint64
}

// NewStore creates a store backed by cfg. The store owns cfg afterwards.
func NewStore(cfg *Config) *Store {
	return &Store{
		cfg:       cfg,
		values:    cfg.Options(),
		observers: make(map[uint64]OptionObserver),
	}
}

// Get returns the current value of key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return copyValue(v), ok
}

// Snapshot returns a copy of every option value.
func (s *Store) Snapshot() (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = copyValue(v)
	}
	return out, nil
}

// Config returns a copy of the backing configuration.
func (s *Store) Config() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Set validates and stores a single option, then notifies observers if the
// effective value changed. Unknown keys are rejected.
func (s *Store) Set(key string, value any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := s.cfg.Clone()
	if err := next.SetOption(key, value); err != nil {
		s.mu.Unlock()
		return err
	}
	changes := s.swapLocked(next)
	s.mu.Unlock()

	s.notify(changes)
	return nil
}

// OptionErrors maps option keys to the reason their value was rejected.
type OptionErrors map[string]error

func (e OptionErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, e[k]))
	}
	return "invalid options: " + strings.Join(parts, "; ")
}

// Update sets several options at once. Either every value is accepted or
// none is stored; rejected values are reported as OptionErrors.
func (s *Store) Update(values map[string]any) ([]OptionChange, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := s.cfg.Clone()
	errs := OptionErrors{}
	for key, value := range values {
		if err := next.SetOption(key, value); err != nil {
			errs[key] = err
		}
	}
	if len(errs) > 0 {
		s.mu.Unlock()
		return nil, errs
	}
	changes := s.swapLocked(next)
	s.mu.Unlock()

	s.notify(changes)
	return changes, nil
}

// Apply replaces the backing configuration (for example after the file was
// edited) and notifies observers about every option whose value changed.
func (s *Store) Apply(cfg *Config) []OptionChange {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if cfg._absConfigFilePath == "" {
		cfg._absConfigFilePath = s.cfg._absConfigFilePath
	}
	changes := s.swapLocked(cfg)
	s.mu.Unlock()

	s.notify(changes)
	return changes
}

// Save writes the backing configuration to its file.
func (s *Store) Save() error {
	s.mu.RLock()
	cfg := s.cfg.Clone()
	s.mu.RUnlock()
	return cfg.WriteConfig()
}

// Subscribe registers an observer. The returned function removes it.
func (s *Store) Subscribe(fn OptionObserver) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) swapLocked(next *Config) []OptionChange {
	values := next.Options()
	var changes []OptionChange
	for _, key := range OptionKeys() {
		if !reflect.DeepEqual(s.values[key], values[key]) {
			changes = append(changes, OptionChange{
				Key:      key,
				OldValue: s.values[key],
				NewValue: copyValue(values[key]),
			})
		}
	}
	s.cfg = next
	s.values = values
	return changes
}

func (s *Store) notify(changes []OptionChange) {
	if len(changes) == 0 {
		return
	}

	s.mu.RLock()
	observers := make([]OptionObserver, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.RUnlock()

	for _, change := range changes {
		log.Debugf("Option %s changed: %v -> %v", change.Key, change.OldValue, change.NewValue)
		for _, fn := range observers {
			fn(change)
		}
	}
}

func copyValue(v any) any {
	if list, ok := v.([]string); ok {
		return append([]string(nil), list...)
	}
	return v
}
