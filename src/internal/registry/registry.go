package registry

import (
	"crypto/tls"
	"net/http"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maksimkurb/netpolicy/src/internal/cache"
	"github.com/maksimkurb/netpolicy/src/internal/ciphers"
	"github.com/maksimkurb/netpolicy/src/internal/config"
	"github.com/maksimkurb/netpolicy/src/internal/cookies"
	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
	"github.com/maksimkurb/netpolicy/src/internal/log"
	"github.com/maksimkurb/netpolicy/src/internal/session"
	"github.com/maksimkurb/netpolicy/src/internal/useragents"
)

// OptionSource provides option values and change notifications.
// *config.Store implements it.
type OptionSource interface {
	Snapshot() (map[string]any, error)
	Subscribe(fn config.OptionObserver) func()
}

// Options configures a Registry.
type Options struct {
	// Source of option values. Nil means the store is unavailable.
	Source OptionSource
	// UserAgentsPath is the user-agent resource. Empty keeps only the default.
	UserAgentsPath string
	// ProfileDir holds the persistent cookie jar and the disk cache. Empty
	// means the jar is kept in memory and there is no disk cache.
	ProfileDir string
	// ApplicationVersion is substituted into user-agent values.
	ApplicationVersion string
	// Transport overrides the network transport of created sessions.
	Transport http.RoundTripper
}

type resources struct {
	userAgents *useragents.Table
	ciphers    []*tls.CipherSuite
}

// Registry is the network policy registry.
type Registry struct {
	opts Options
	vars useragents.Variables

	initOnce    sync.Once
	initErr     error
	initialized atomic.Bool

	state     atomic.Pointer[State]
	resources atomic.Pointer[resources]

	// writeMu serializes state swaps
	writeMu     sync.Mutex
	unsubscribe func()

	resMu       sync.Mutex
	jar         *cookies.Jar
	cache       *cache.NetworkCache
	cacheFailed bool

	sessionsMu sync.RWMutex
	sessions   map[string]*session.Session
	closed     bool
}

// New creates an uninitialized registry serving built-in defaults.
func New(opts Options) *Registry {
	r := &Registry{
		opts:     opts,
		vars:     useragents.DefaultVariables(opts.ApplicationVersion),
		sessions: make(map[string]*session.Session),
	}
	r.state.Store(builtinState())
	r.resources.Store(&resources{
		userAgents: useragents.NewTable(),
		ciphers:    ciphers.Default(),
	})
	return r
}

// Initialize loads the user agents and the cipher list and reads the
// initial options. Only the first call does any work; later calls return
// the first result. When the option source is unavailable the registry
// keeps built-in defaults and an INITIALIZATION_ERROR is returned.
func (r *Registry) Initialize() error {
	r.initOnce.Do(func() {
		r.initErr = r.initialize()
		r.initialized.Store(true)
	})
	return r.initErr
}

func (r *Registry) initialize() error {
	table := useragents.NewTable()
	if r.opts.UserAgentsPath != "" {
		loaded, skipped, err := useragents.Load(r.opts.UserAgentsPath)
		for _, e := range skipped {
			log.Warnf("%v", e)
		}
		if err != nil {
			log.Warnf("Using the built-in user agent only: %v", err)
		} else {
			table = loaded
		}
	}
	r.resources.Store(&resources{
		userAgents: table,
		ciphers:    ciphers.Default(),
	})

	if r.opts.Source == nil {
		log.Warnf("Option source is not available, using built-in network policy")
		return nperrors.NewInitializationError("option source is not available", nil)
	}

	// Subscribe before reading so no change falls between the two; early
	// notifications wait on writeMu and apply on top of the snapshot.
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	unsubscribe := r.opts.Source.Subscribe(func(change config.OptionChange) {
		r.OptionChanged(change.Key, change.NewValue)
	})
	values, err := r.opts.Source.Snapshot()
	if err != nil {
		unsubscribe()
		log.Warnf("Failed to read options, using built-in network policy: %v", err)
		return nperrors.NewInitializationError("failed to read options", err)
	}
	r.state.Store(stateFromOptions(values))
	r.unsubscribe = unsubscribe

	log.Infof("Network policy initialized with %d user agent(s) and %d cipher suite(s)", table.Len(), len(r.resources.Load().ciphers))
	return nil
}

// IsInitialized reports whether Initialize has run.
func (r *Registry) IsInitialized() bool {
	return r.initialized.Load()
}

// State returns the current policy snapshot.
func (r *Registry) State() State {
	return *r.state.Load().clone()
}

// UserAgents returns user-agent identifiers in display order. The list
// always starts with the default entry.
func (r *Registry) UserAgents() []string {
	return r.resources.Load().userAgents.Identifiers()
}

// UserAgent returns the entry for identifier with placeholders expanded.
// Unknown identifiers resolve to the default entry.
func (r *Registry) UserAgent(identifier string) useragents.Info {
	return r.resources.Load().userAgents.Resolve(identifier).Expanded(r.vars)
}

// LookupUserAgent is like UserAgent but reports unknown identifiers.
func (r *Registry) LookupUserAgent(identifier string) (useragents.Info, bool) {
	info, ok := r.resources.Load().userAgents.Get(identifier)
	if !ok {
		return useragents.Info{}, false
	}
	return info.Expanded(r.vars), true
}

func (r *Registry) AcceptLanguage() string {
	return r.state.Load().AcceptLanguage
}

// DefaultCiphers returns the platform cipher list loaded at initialization.
func (r *Registry) DefaultCiphers() []*tls.CipherSuite {
	return append([]*tls.CipherSuite(nil), r.resources.Load().ciphers...)
}

// Ciphers returns the cipher suites offered by new sessions.
func (r *Registry) Ciphers() []*tls.CipherSuite {
	return ciphers.Resolve(r.state.Load().Ciphers)
}

func (r *Registry) DoNotTrackPolicy() DoNotTrackPolicy {
	return r.state.Load().DoNotTrack
}

func (r *Registry) CanSendReferrer() bool {
	return r.state.Load().CanSendReferrer
}

func (r *Registry) IsWorkingOffline() bool {
	return r.state.Load().WorkingOffline
}

func (r *Registry) IsUsingSystemProxyAuthentication() bool {
	return r.state.Load().UsingSystemProxyAuth
}

// OptionChanged swaps the field named by key. Unknown keys and values of
// the wrong type are ignored.
func (r *Registry) OptionChanged(key string, value any) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	next := r.state.Load().clone()
	known, ok := next.applyOption(key, value)
	if !known {
		log.Debugf("Ignoring unknown option %s", key)
		return
	}
	if !ok {
		log.Warnf("Ignoring option %s with unexpected value %v (%T)", key, value, value)
		return
	}
	r.state.Store(next)
	log.Debugf("Network policy option %s set to %v", key, value)

	if key == config.OptionDiskCacheLimit {
		r.resMu.Lock()
		c := r.cache
		r.resMu.Unlock()
		if c != nil {
			c.SetMaximumSize(next.DiskCacheLimitKB)
		}
	}
}

// CookieJar returns the shared cookie jar, creating it on first use.
func (r *Registry) CookieJar() *cookies.Jar {
	r.resMu.Lock()
	defer r.resMu.Unlock()

	if r.jar == nil {
		path := ""
		if r.opts.ProfileDir != "" {
			path = filepath.Join(r.opts.ProfileDir, cookies.FileName)
		}
		jar, err := cookies.New(cookies.Options{Path: path})
		if err != nil {
			log.Warnf("Starting with an empty cookie jar: %v", err)
		}
		r.jar = jar
	}
	return r.jar
}

// Cache returns the shared disk cache, creating it on first use. It is nil
// when the registry has no profile directory or the cache cannot be opened.
func (r *Registry) Cache() *cache.NetworkCache {
	r.resMu.Lock()
	defer r.resMu.Unlock()

	if r.cache == nil && !r.cacheFailed && r.opts.ProfileDir != "" {
		c, err := cache.New(cache.Options{
			Directory:     filepath.Join(r.opts.ProfileDir, cache.DirName),
			MaximumSizeKB: r.state.Load().DiskCacheLimitKB,
		})
		if err != nil {
			log.Errorf("Disk cache is disabled: %v", err)
			r.cacheFailed = true
			return nil
		}
		r.cache = c
	}
	return r.cache
}

// Policy returns the policy a session created now would get.
func (r *Registry) Policy() session.Policy {
	return r.policyFor(r.state.Load())
}

func (r *Registry) policyFor(st *State) session.Policy {
	info := r.UserAgent(st.UserAgent)
	return session.Policy{
		UserAgent:            info,
		UserAgentValue:       info.Value,
		AcceptLanguage:       st.AcceptLanguage,
		DoNotTrack:           st.DoNotTrack,
		CanSendReferrer:      st.CanSendReferrer,
		WorkingOffline:       st.WorkingOffline,
		UsingSystemProxyAuth: st.UsingSystemProxyAuth,
		Ciphers:              ciphers.Resolve(st.Ciphers),
	}
}

// CreateSession builds a session from the current policy snapshot.
//
// Simple-mode sessions get a fresh in-memory jar and no disk cache, whatever
// isPrivate says. Private sessions get a fresh in-memory jar owned by the
// session and no disk cache. All other sessions share the registry's jar and
// cache.
func (r *Registry) CreateSession(isPrivate, useSimpleMode bool, owner any) (*session.Session, error) {
	opts := session.Options{
		Private: isPrivate,
		Simple:  useSimpleMode,
		Owner:   owner,
		Policy:  r.policyFor(r.state.Load()),
		Base:    r.opts.Transport,
	}

	switch {
	case useSimpleMode:
		opts.Jar = cookies.NewMemoryJar()
	case isPrivate:
		opts.Jar = cookies.NewMemoryJar()
	default:
		opts.Jar = r.CookieJar()
		opts.Cache = r.Cache()
	}

	r.sessionsMu.Lock()
	defer r.sessionsMu.Unlock()
	if r.closed {
		return nil, nperrors.NewInternalError("registry is closed", nil)
	}
	s := session.New(opts)
	r.sessions[s.ID] = s
	return s, nil
}

// Session returns a live session by ID.
func (r *Registry) Session(id string) (*session.Session, bool) {
	r.sessionsMu.RLock()
	defer r.sessionsMu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Sessions returns live sessions ordered by creation time.
func (r *Registry) Sessions() []*session.Session {
	r.sessionsMu.RLock()
	out := make([]*session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.sessionsMu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

// CloseSession closes and forgets a session. It reports whether it existed.
func (r *Registry) CloseSession(id string) bool {
	r.sessionsMu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.sessionsMu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// ClearCookies removes cookies created within period from the shared jar;
// zero removes all of them. The persistent jar is saved afterwards.
func (r *Registry) ClearCookies(period time.Duration) error {
	jar := r.CookieJar()
	removed := jar.Clear(period)
	log.Infof("Removed %d cookie(s)", removed)
	return jar.Save()
}

// ClearCache removes cache entries created within period; zero removes all.
func (r *Registry) ClearCache(period time.Duration) error {
	c := r.Cache()
	if c == nil {
		return nil
	}
	removed := c.Clear(period)
	log.Infof("Removed %d cache entries", removed)
	return nil
}

// Close stops listening for option changes, closes live sessions, saves the
// shared jar and releases the cache. Sessions can no longer be created.
func (r *Registry) Close() error {
	r.writeMu.Lock()
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	r.writeMu.Unlock()

	r.sessionsMu.Lock()
	r.closed = true
	sessions := r.sessions
	r.sessions = make(map[string]*session.Session)
	r.sessionsMu.Unlock()
	for _, s := range sessions {
		s.Close()
	}

	r.resMu.Lock()
	jar, c := r.jar, r.cache
	r.cache = nil
	r.resMu.Unlock()

	if c != nil {
		c.Close()
	}
	if jar != nil {
		return jar.Save()
	}
	return nil
}
