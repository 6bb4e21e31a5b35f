package session

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maksimkurb/netpolicy/src/internal/cache"
	"github.com/maksimkurb/netpolicy/src/internal/ciphers"
	"github.com/maksimkurb/netpolicy/src/internal/cookies"
	"github.com/maksimkurb/netpolicy/src/internal/log"
)

// Options configures a new Session.
type Options struct {
	Private bool
	Simple  bool
	Owner   any
	Policy  Policy
	Jar     *cookies.Jar
	Cache   *cache.NetworkCache

	// Proxy overrides http.ProxyFromEnvironment.
	Proxy func(*http.Request) (*url.URL, error)
	// Base overrides the network transport, mainly for tests.
	Base http.RoundTripper
	// Timeout of the http.Client; zero means no timeout.
	Timeout time.Duration
}

// Session is a configured networking context used by one browsing window.
type Session struct {
	ID      string
	Private bool
	Simple  bool
	Owner   any
	Created time.Time

	policy    Policy
	cache     *cache.NetworkCache
	client    *http.Client
	transport *http.Transport

	mu     sync.RWMutex
	jar    *cookies.Jar
	closed bool
}

// New builds a session. The caller decides which jar and cache it gets.
func New(opts Options) *Session {
	policy := opts.Policy.clone()

	jar := opts.Jar
	if jar == nil {
		jar = cookies.NewMemoryJar()
	}

	s := &Session{
		ID:      uuid.NewString(),
		Private: opts.Private,
		Simple:  opts.Simple,
		Owner:   opts.Owner,
		Created: time.Now(),
		policy:  policy,
		cache:   opts.Cache,
		jar:     jar,
	}

	base := opts.Base
	if base == nil {
		s.transport = newTransport(policy, opts.Proxy)
		base = s.transport
	}

	s.client = &http.Client{
		Transport: &policyTransport{base: base, policy: policy, cache: opts.Cache},
		Jar:       jar,
		Timeout:   opts.Timeout,
	}

	log.Debugf("Created session %s (private=%v, simple=%v, cache=%v)", s.ID, s.Private, s.Simple, s.cache != nil)
	return s
}

func newTransport(policy Policy, proxy func(*http.Request) (*url.URL, error)) *http.Transport {
	if proxy == nil {
		proxy = http.ProxyFromEnvironment
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxyFunc(proxy, policy.UsingSystemProxyAuth)
	transport.TLSClientConfig = &tls.Config{
		MinVersion:   tls.VersionTLS12,
		CipherSuites: ciphers.IDs(policy.Ciphers),
	}
	return transport
}

// Client returns the http.Client of the session.
func (s *Session) Client() *http.Client {
	return s.client
}

// Do sends a request through the session.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	return s.client.Do(req)
}

// Cookies returns the cookies the session would send to u.
func (s *Session) Cookies(u *url.URL) []*http.Cookie {
	s.mu.RLock()
	jar := s.jar
	s.mu.RUnlock()
	if jar == nil {
		return nil
	}
	return jar.Cookies(u)
}

// CookieJar returns the jar used by the session. It is nil after Close for
// sessions that owned their jar.
func (s *Session) CookieJar() *cookies.Jar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jar
}

// Cache returns the disk cache, nil for private and simple sessions.
func (s *Session) Cache() *cache.NetworkCache {
	return s.cache
}

// Policy returns the policy the session was created with.
func (s *Session) Policy() Policy {
	return s.policy.clone()
}

// OwnsJar reports whether the cookie jar belongs to this session only.
func (s *Session) OwnsJar() bool {
	return s.Private || s.Simple
}

// Close releases idle connections and drops a session-owned jar. Shared
// resources are left alone. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	if s.transport != nil {
		s.transport.CloseIdleConnections()
	}
	if s.OwnsJar() && s.jar != nil {
		s.jar.Clear(0)
		s.jar = nil
	}
	log.Debugf("Closed session %s", s.ID)
}
