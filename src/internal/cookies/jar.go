package cookies

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
	"github.com/maksimkurb/netpolicy/src/internal/log"
)

// Jar is an http.CookieJar that remembers when each cookie was created.
type Jar struct {
	path string
	now  func() time.Time

	mu      sync.RWMutex
	inner   *cookiejar.Jar
	entries map[entryKey]*Entry
	dirty   bool
}

// Options configures a Jar.
type Options struct {
	// Path of the JSON file backing a persistent jar. Empty means ephemeral.
	Path string
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// NewMemoryJar creates an ephemeral jar that never touches disk.
func NewMemoryJar() *Jar {
	jar, _ := New(Options{})
	return jar
}

// New creates a jar. A persistent jar loads previously saved cookies;
// a missing file is not an error. When the file cannot be read the returned
// jar is empty but usable alongside the error.
func New(opts Options) (*Jar, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	j := &Jar{
		path:    opts.Path,
		now:     now,
		entries: make(map[entryKey]*Entry),
	}
	j.inner = newInnerJar()

	if j.path != "" {
		entries, err := loadEntries(j.path)
		if err != nil {
			return j, err
		}
		t := j.now()
		for _, e := range entries {
			if e.expired(t) {
				continue
			}
			j.entries[e.key()] = e
		}
		j.inner = j.rebuild(j.entries)
		log.Debugf("Loaded %d cookie(s) from %s", len(j.entries), j.path)
	}

	return j, nil
}

func newInnerJar() *cookiejar.Jar {
	// cookiejar.New never returns an error
	inner, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return inner
}

// IsPersistent reports whether the jar is backed by a file.
func (j *Jar) IsPersistent() bool {
	return j.path != ""
}

// Path returns the backing file, empty for ephemeral jars.
func (j *Jar) Path() string {
	return j.path
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if u.Scheme != "http" && u.Scheme != "https" {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	t := j.now()
	for _, c := range cookies {
		e, remove := newEntry(u, c, t)
		if e == nil {
			continue
		}
		k := e.key()
		if remove {
			delete(j.entries, k)
		} else {
			if old, ok := j.entries[k]; ok {
				e.Created = old.Created
			}
			j.entries[k] = e
		}
		j.dirty = true
	}
	j.inner.SetCookies(u, cookies)
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	inner := j.inner
	j.mu.RUnlock()
	return inner.Cookies(u)
}

// Count returns the number of live cookies.
func (j *Jar) Count() int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	t := j.now()
	n := 0
	for _, e := range j.entries {
		if !e.expired(t) {
			n++
		}
	}
	return n
}

// Entries returns a copy of the live cookies ordered by domain, path and name.
func (j *Jar) Entries() []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.liveLocked(false)
}

func (j *Jar) liveLocked(persistentOnly bool) []Entry {
	t := j.now()
	out := make([]Entry, 0, len(j.entries))
	for _, e := range j.entries {
		if e.expired(t) || (persistentOnly && e.IsSession()) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Domain != out[b].Domain {
			return out[a].Domain < out[b].Domain
		}
		if out[a].Path != out[b].Path {
			return out[a].Path < out[b].Path
		}
		return out[a].Name < out[b].Name
	})
	return out
}

// Clear removes cookies created within the last period. A zero period
// removes every cookie. It returns the number of removed cookies.
func (j *Jar) Clear(period time.Duration) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	t := j.now()
	cutoff := t.Add(-period)

	kept := make(map[entryKey]*Entry, len(j.entries))
	removed := 0
	for k, e := range j.entries {
		if e.expired(t) {
			continue
		}
		if period <= 0 || !e.Created.Before(cutoff) {
			removed++
			continue
		}
		kept[k] = e
	}

	j.inner = j.rebuild(kept)
	j.entries = kept
	j.dirty = true
	return removed
}

func (j *Jar) rebuild(entries map[entryKey]*Entry) *cookiejar.Jar {
	inner := newInnerJar()
	for _, e := range entries {
		u, c := e.replay()
		inner.SetCookies(u, []*http.Cookie{c})
	}
	return inner
}

// Save writes persistent cookies to the backing file. It is a no-op for
// ephemeral jars and when nothing changed since the last save.
func (j *Jar) Save() error {
	if j.path == "" {
		return nil
	}

	j.mu.Lock()
	if !j.dirty {
		j.mu.Unlock()
		return nil
	}
	entries := j.liveLocked(true)
	j.dirty = false
	j.mu.Unlock()

	if err := saveEntries(j.path, entries); err != nil {
		j.mu.Lock()
		j.dirty = true
		j.mu.Unlock()
		return nperrors.NewStorageError("failed to save cookies", err)
	}
	log.Debugf("Saved %d cookie(s) to %s", len(entries), j.path)
	return nil
}
