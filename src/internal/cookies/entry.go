package cookies

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Entry is a stored cookie as recorded by the Jar.
type Entry struct {
	Name     string        `json:"name"`
	Value    string        `json:"value"`
	Domain   string        `json:"domain"`
	Path     string        `json:"path"`
	Host     string        `json:"host"`
	HostOnly bool          `json:"host_only"`
	Secure   bool          `json:"secure"`
	HttpOnly bool          `json:"http_only"`
	SameSite http.SameSite `json:"same_site,omitempty"`
	Expires  time.Time     `json:"expires,omitempty"`
	Created  time.Time     `json:"created"`
}

type entryKey struct {
	domain, path, name string
}

func (e *Entry) key() entryKey {
	return entryKey{domain: e.Domain, path: e.Path, name: e.Name}
}

// IsSession reports whether the cookie lives only as long as the jar.
func (e *Entry) IsSession() bool {
	return e.Expires.IsZero()
}

func (e *Entry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && !e.Expires.After(now)
}

// replay returns the URL and cookie that recreate this entry in a fresh
// cookiejar.Jar.
func (e *Entry) replay() (*url.URL, *http.Cookie) {
	scheme := "http"
	if e.Secure {
		scheme = "https"
	}
	u := &url.URL{Scheme: scheme, Host: e.Host, Path: e.Path}

	c := &http.Cookie{
		Name:     e.Name,
		Value:    e.Value,
		Path:     e.Path,
		Expires:  e.Expires,
		Secure:   e.Secure,
		HttpOnly: e.HttpOnly,
		SameSite: e.SameSite,
	}
	if !e.HostOnly {
		c.Domain = e.Domain
	}
	return u, c
}

// newEntry mirrors the attribute processing of RFC 6265 section 5.3 closely
// enough to predict what cookiejar.Jar stores. It returns nil for cookies
// the jar rejects. A non-nil entry with remove set deletes the stored cookie.
func newEntry(u *url.URL, c *http.Cookie, now time.Time) (e *Entry, remove bool) {
	host := canonicalHost(u.Host)
	if host == "" || c.Name == "" {
		return nil, false
	}

	e = &Entry{
		Name:     c.Name,
		Value:    c.Value,
		Host:     host,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
		SameSite: c.SameSite,
		Created:  now,
	}

	domain, hostOnly, ok := domainAndType(host, c.Domain)
	if !ok {
		return nil, false
	}
	e.Domain = domain
	e.HostOnly = hostOnly

	if c.Path == "" || c.Path[0] != '/' {
		e.Path = defaultPath(u.Path)
	} else {
		e.Path = c.Path
	}

	switch {
	case c.MaxAge < 0:
		return e, true
	case c.MaxAge > 0:
		e.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
	case !c.Expires.IsZero():
		if !c.Expires.After(now) {
			return e, true
		}
		e.Expires = c.Expires
	}
	return e, false
}

func canonicalHost(host string) string {
	if h, _, err := splitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

func splitHostPort(host string) (string, string, error) {
	u := url.URL{Host: host}
	if u.Port() == "" {
		return u.Hostname(), "", nil
	}
	return u.Hostname(), u.Port(), nil
}

func defaultPath(path string) string {
	if path == "" || path[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(path, "/")
	if i == 0 {
		return "/"
	}
	return path[:i]
}
