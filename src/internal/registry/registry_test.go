package registry

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/maksimkurb/netpolicy/src/internal/config"
	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
	"github.com/maksimkurb/netpolicy/src/internal/log"
	"github.com/maksimkurb/netpolicy/src/internal/useragents"
)

func init() {
	log.DisableLogs()
}

// fakeSource is a hand-written OptionSource.
type fakeSource struct {
	mu        sync.Mutex
	values    map[string]any
	err       error
	observers []config.OptionObserver
	snapshots int
}

func (f *fakeSource) Snapshot() (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]any, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out, nil
}

func (f *fakeSource) Subscribe(fn config.OptionObserver) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, fn)
	idx := len(f.observers) - 1
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.observers[idx] = nil
	}
}

func (f *fakeSource) emit(key string, value any) {
	f.mu.Lock()
	observers := append([]config.OptionObserver(nil), f.observers...)
	f.mu.Unlock()
	for _, fn := range observers {
		if fn != nil {
			fn(config.OptionChange{Key: key, NewValue: value})
		}
	}
}

const agentsTOML = `
[[user_agent]]
identifier = "firefox"
title = "Firefox"
value = "Mozilla/5.0 ({{platform}}; rv:128.0) Gecko/20100101 Firefox/128.0"

[[user_agent]]
identifier = "broken"
title = 42

[[user_agent]]
identifier = "chrome"
title = "Chrome"
value = "Mozilla/5.0 ({{platform}}) Chrome/126.0"
`

func newTestRegistry(t *testing.T, source OptionSource) *Registry {
	t.Helper()
	dir := t.TempDir()
	agents := filepath.Join(dir, "useragents.toml")
	if err := os.WriteFile(agents, []byte(agentsTOML), 0644); err != nil {
		t.Fatalf("failed to write user agents: %v", err)
	}

	r := New(Options{
		Source:             source,
		UserAgentsPath:     agents,
		ProfileDir:         filepath.Join(dir, "profile"),
		ApplicationVersion: "1.0.0",
	})
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func defaultSource() *fakeSource {
	return &fakeSource{values: config.NewDefaultConfig("").Options()}
}

func TestUserAgent_UnknownReturnsDefault(t *testing.T) {
	r := newTestRegistry(t, defaultSource())
	if err := r.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	want := r.UserAgent(useragents.DefaultIdentifier)
	for _, id := range []string{"", "opera", "FIREFOX", "broken", "../default"} {
		got := r.UserAgent(id)
		if got != want {
			t.Errorf("UserAgent(%q) = %+v, want default", id, got)
		}
	}
	if _, ok := r.LookupUserAgent("opera"); ok {
		t.Error("LookupUserAgent must report unknown identifiers")
	}
}

func TestUserAgents_NonEmptyAndUnique(t *testing.T) {
	for _, initialize := range []bool{false, true} {
		r := newTestRegistry(t, defaultSource())
		if initialize {
			_ = r.Initialize()
		}

		ids := r.UserAgents()
		if len(ids) < 1 {
			t.Fatal("user agent list must never be empty")
		}
		seen := make(map[string]bool)
		for _, id := range ids {
			if seen[id] {
				t.Errorf("duplicate identifier %q", id)
			}
			seen[id] = true
		}
	}
}

func TestInitialize_Idempotent(t *testing.T) {
	source := defaultSource()
	r := newTestRegistry(t, source)

	if err := r.Initialize(); err != nil {
		t.Fatalf("first Initialize failed: %v", err)
	}
	agents := r.UserAgents()
	cipherList := r.DefaultCiphers()

	if err := r.Initialize(); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}
	if !reflect.DeepEqual(agents, r.UserAgents()) {
		t.Error("user agents changed after second Initialize")
	}
	if !reflect.DeepEqual(cipherList, r.DefaultCiphers()) {
		t.Error("cipher list changed after second Initialize")
	}
	if source.snapshots != 1 {
		t.Errorf("expected options to be read once, got %d", source.snapshots)
	}
	if len(source.observers) != 1 {
		t.Errorf("expected a single subscription, got %d", len(source.observers))
	}
}

func TestCreateSession_PrivateUsesOwnJar(t *testing.T) {
	r := newTestRegistry(t, defaultSource())
	_ = r.Initialize()

	s, err := r.CreateSession(true, false, "window-1")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if s.CookieJar() == r.CookieJar() {
		t.Error("private session must not share the registry jar")
	}
	if s.Cache() != nil {
		t.Error("private session must not get the disk cache")
	}
	if s.CookieJar().IsPersistent() {
		t.Error("private session jar must not be persistent")
	}
	if s.Owner != "window-1" {
		t.Errorf("unexpected owner %v", s.Owner)
	}
}

func TestCreateSession_SimpleModeHasNoCache(t *testing.T) {
	r := newTestRegistry(t, defaultSource())
	_ = r.Initialize()

	if r.Cache() == nil {
		t.Fatal("expected the shared disk cache to exist")
	}

	for _, private := range []bool{false, true} {
		s, err := r.CreateSession(private, true, nil)
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if s.Cache() != nil {
			t.Errorf("simple session (private=%v) must have no disk cache", private)
		}
		if s.CookieJar() == r.CookieJar() || s.CookieJar().IsPersistent() {
			t.Errorf("simple session (private=%v) must not touch the persistent jar", private)
		}
	}
}

func TestCreateSession_NormalSharesResources(t *testing.T) {
	r := newTestRegistry(t, defaultSource())
	_ = r.Initialize()

	s, err := r.CreateSession(false, false, nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if s.CookieJar() != r.CookieJar() {
		t.Error("normal session must use the shared jar")
	}
	if s.Cache() == nil || s.Cache() != r.Cache() {
		t.Error("normal session must use the shared cache")
	}
	if got, ok := r.Session(s.ID); !ok || got != s {
		t.Error("session must be tracked by ID")
	}
	if !r.CloseSession(s.ID) || r.CloseSession(s.ID) {
		t.Error("CloseSession must report the first close only")
	}
}

func TestCookieJarAndCache_SameInstance(t *testing.T) {
	r := newTestRegistry(t, defaultSource())
	if r.CookieJar() != r.CookieJar() {
		t.Error("CookieJar must return the same instance")
	}
	if r.Cache() != r.Cache() {
		t.Error("Cache must return the same instance")
	}
}

func TestOptionChanged_WorkingOffline(t *testing.T) {
	r := newTestRegistry(t, defaultSource())
	_ = r.Initialize()

	r.OptionChanged(config.OptionWorkingOffline, true)
	if !r.IsWorkingOffline() {
		t.Fatal("expected working offline after option change")
	}

	r.OptionChanged(config.OptionAcceptLanguage, "de")
	r.OptionChanged("Browser/HomePage", "about:blank")
	if !r.IsWorkingOffline() {
		t.Error("unrelated option change must not affect working offline")
	}
	if r.AcceptLanguage() != "de" {
		t.Errorf("expected Accept-Language de, got %q", r.AcceptLanguage())
	}

	// Wrong type is ignored
	r.OptionChanged(config.OptionWorkingOffline, 7)
	if !r.IsWorkingOffline() {
		t.Error("value of the wrong type must be ignored")
	}
}

func TestOptionChanged_AllKeys(t *testing.T) {
	r := newTestRegistry(t, defaultSource())
	_ = r.Initialize()

	r.OptionChanged(config.OptionDoNotTrack, "doNotAllow")
	r.OptionChanged(config.OptionEnableReferrer, false)
	r.OptionChanged(config.OptionUseSystemProxyAuthentication, true)
	r.OptionChanged(config.OptionUserAgent, "firefox")
	r.OptionChanged(config.OptionCiphers, []string{"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256"})

	if r.DoNotTrackPolicy() != DoNotAllowToTrack {
		t.Errorf("unexpected DNT policy %v", r.DoNotTrackPolicy())
	}
	if r.CanSendReferrer() {
		t.Error("expected referrer to be disabled")
	}
	if !r.IsUsingSystemProxyAuthentication() {
		t.Error("expected system proxy authentication")
	}
	if len(r.Ciphers()) != 1 {
		t.Errorf("expected a single cipher, got %d", len(r.Ciphers()))
	}

	policy := r.Policy()
	if policy.UserAgent.Identifier != "firefox" {
		t.Errorf("unexpected user agent %q", policy.UserAgent.Identifier)
	}
	if policy.UserAgentValue != r.UserAgent("firefox").Value {
		t.Error("policy must carry the expanded user agent")
	}

	// Legacy numeric DNT
	r.OptionChanged(config.OptionDoNotTrack, 1)
	if r.DoNotTrackPolicy() != AllowToTrack {
		t.Errorf("expected AllowToTrack from legacy value, got %v", r.DoNotTrackPolicy())
	}
}

func TestOptionChanged_ResizesCache(t *testing.T) {
	r := newTestRegistry(t, defaultSource())
	_ = r.Initialize()
	c := r.Cache()

	r.OptionChanged(config.OptionDiskCacheLimit, 64)
	if c.MaximumSize() != 64*1024 {
		t.Errorf("expected cache limit 64 KiB, got %d", c.MaximumSize())
	}
}

func TestClearCookies_SessionSeesEmptyJar(t *testing.T) {
	r := newTestRegistry(t, defaultSource())
	_ = r.Initialize()

	u, _ := url.Parse("https://example.com/")
	r.CookieJar().SetCookies(u, []*http.Cookie{
		{Name: "a", Value: "1", MaxAge: 3600},
		{Name: "b", Value: "2"},
	})
	if r.CookieJar().Count() != 2 {
		t.Fatal("expected cookies in the shared jar")
	}

	if err := r.ClearCookies(0); err != nil {
		t.Fatalf("ClearCookies failed: %v", err)
	}
	if r.CookieJar().Count() != 0 {
		t.Error("shared jar must be empty after ClearCookies(0)")
	}

	s, _ := r.CreateSession(false, false, nil)
	if len(s.Cookies(u)) != 0 {
		t.Error("new session must see no pre-existing cookies")
	}
}

func TestClearCache(t *testing.T) {
	r := newTestRegistry(t, defaultSource())
	_ = r.Initialize()

	if err := r.Cache().Store("https://example.com/", 200, nil, []byte("x")); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := r.ClearCache(time.Hour); err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	if r.Cache().Stats().Entries != 0 {
		t.Error("entry created within the period must be removed")
	}
}

func TestInitialize_SourceUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		source OptionSource
	}{
		{"nil source", nil},
		{"failing source", &fakeSource{err: errors.New("store is locked")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(t, tt.source)

			err := r.Initialize()
			if !errors.Is(err, nperrors.ErrInitialization) {
				t.Fatalf("expected INITIALIZATION_ERROR, got %v", err)
			}
			if !r.IsInitialized() {
				t.Error("registry must be initialized even when the source failed")
			}
			if r.CanSendReferrer() || r.IsWorkingOffline() || r.DoNotTrackPolicy() != Skip {
				t.Errorf("expected safe defaults, got %+v", r.State())
			}
			if len(r.UserAgents()) != 3 {
				t.Errorf("user agents must still load, got %v", r.UserAgents())
			}
			if _, err := r.CreateSession(false, false, nil); err != nil {
				t.Errorf("sessions must still be created: %v", err)
			}
		})
	}
}

func TestInitialize_LoadsUserAgentsSkippingMalformed(t *testing.T) {
	r := newTestRegistry(t, defaultSource())
	_ = r.Initialize()

	want := []string{useragents.DefaultIdentifier, "firefox", "chrome"}
	if !reflect.DeepEqual(r.UserAgents(), want) {
		t.Errorf("expected %v, got %v", want, r.UserAgents())
	}
}

func TestInitialize_MissingUserAgents(t *testing.T) {
	r := New(Options{Source: defaultSource(), UserAgentsPath: "/nonexistent/useragents.toml"})
	defer r.Close()

	if err := r.Initialize(); err != nil {
		t.Fatalf("missing user agents must not fail Initialize: %v", err)
	}
	if len(r.UserAgents()) != 1 {
		t.Errorf("expected only the default, got %v", r.UserAgents())
	}
}

func TestSubscription_FromSource(t *testing.T) {
	source := defaultSource()
	r := newTestRegistry(t, source)
	_ = r.Initialize()

	source.emit(config.OptionWorkingOffline, true)
	if !r.IsWorkingOffline() {
		t.Error("expected change from the source to reach the registry")
	}

	_ = r.Close()
	source.emit(config.OptionWorkingOffline, false)
	if !r.IsWorkingOffline() {
		t.Error("closed registry must not receive changes")
	}
	if _, err := r.CreateSession(false, false, nil); err == nil {
		t.Error("closed registry must refuse new sessions")
	}
}

func TestStoreIntegration(t *testing.T) {
	store := config.NewStore(config.NewDefaultConfig(""))
	r := newTestRegistry(t, store)
	if err := r.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !r.CanSendReferrer() {
		t.Error("file default enables the referrer")
	}

	if err := store.Set(config.OptionDoNotTrack, "allow"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if r.DoNotTrackPolicy() != AllowToTrack {
		t.Errorf("expected AllowToTrack, got %v", r.DoNotTrackPolicy())
	}
}

func TestSession_UsesPolicySnapshot(t *testing.T) {
	var gotDNT, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotDNT = req.Header.Get("DNT")
		gotUA = req.Header.Get("User-Agent")
	}))
	defer server.Close()

	r := newTestRegistry(t, defaultSource())
	_ = r.Initialize()
	r.OptionChanged(config.OptionDoNotTrack, "doNotAllow")

	s, _ := r.CreateSession(true, false, nil)
	r.OptionChanged(config.OptionDoNotTrack, "skip")

	resp, err := s.Client().Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if gotDNT != "1" {
		t.Errorf("session must keep the policy it was created with, DNT=%q", gotDNT)
	}
	if gotUA != r.UserAgent(useragents.DefaultIdentifier).Value {
		t.Errorf("unexpected User-Agent %q", gotUA)
	}
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	r := newTestRegistry(t, defaultSource())
	_ = r.Initialize()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			r.OptionChanged(config.OptionAcceptLanguage, fmt.Sprintf("en;q=0.%d", i))
			r.OptionChanged(config.OptionWorkingOffline, i%2 == 0)
		}(i)
		go func() {
			defer wg.Done()
			st := r.State()
			_ = st.AcceptLanguage
			s, err := r.CreateSession(i%2 == 0, false, nil)
			if err == nil {
				r.CloseSession(s.ID)
			}
		}()
		go func() {
			defer wg.Done()
			_ = r.ClearCookies(0)
			_ = r.ClearCache(0)
		}()
	}
	wg.Wait()
}
