package session

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/maksimkurb/netpolicy/src/internal/cache"
	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
	"github.com/maksimkurb/netpolicy/src/internal/log"
)

// CacheStatusHeader is set on responses served from the disk cache.
const CacheStatusHeader = "X-Netpolicy-Cache"

// policyTransport applies a Policy to every outgoing request.
type policyTransport struct {
	base   http.RoundTripper
	policy Policy
	cache  *cache.NetworkCache
}

func (t *policyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	t.applyHeaders(r.Header)

	if t.policy.WorkingOffline {
		return t.offline(r)
	}

	resp, err := t.base.RoundTrip(r)
	if err != nil {
		return nil, err
	}
	if t.cache != nil && isCacheable(r, resp) {
		t.store(r, resp)
	}
	return resp, nil
}

func (t *policyTransport) applyHeaders(h http.Header) {
	if t.policy.UserAgentValue != "" {
		h.Set("User-Agent", t.policy.UserAgentValue)
	}
	if t.policy.AcceptLanguage != "" {
		h.Set("Accept-Language", t.policy.AcceptLanguage)
	}
	if v, ok := t.policy.DoNotTrack.headerValue(); ok {
		h.Set("DNT", v)
	} else {
		h.Del("DNT")
	}
	if !t.policy.CanSendReferrer {
		h.Del("Referer")
	}
}

func (t *policyTransport) offline(r *http.Request) (*http.Response, error) {
	if t.cache != nil && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
		if meta, body, ok := t.cache.Lookup(r.URL.String()); ok {
			return cachedResponse(r, meta, body), nil
		}
	}
	return nil, nperrors.NewOfflineError(fmt.Sprintf("working offline: %s %s is not available", r.Method, r.URL.Redacted()))
}

func (t *policyTransport) store(r *http.Request, resp *http.Response) {
	// Responses larger than the cache limit are passed through untouched
	limit := t.cache.MaximumSize()
	if resp.ContentLength > limit {
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		resp.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), &errReader{err: err}))
		return
	}
	if int64(len(body)) > limit {
		resp.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(body), resp.Body), Closer: resp.Body}
		return
	}
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if err := t.cache.Store(r.URL.String(), resp.StatusCode, resp.Header, body); err != nil {
		log.Warnf("Failed to cache %s: %v", r.URL.Redacted(), err)
	}
}

func isCacheable(r *http.Request, resp *http.Response) bool {
	if r.Method != http.MethodGet || resp.StatusCode != http.StatusOK {
		return false
	}
	cc := strings.ToLower(resp.Header.Get("Cache-Control"))
	return !strings.Contains(cc, "no-store") && !strings.Contains(cc, "private")
}

func cachedResponse(r *http.Request, meta *cache.Metadata, body []byte) *http.Response {
	header := meta.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set(CacheStatusHeader, "HIT")

	resp := &http.Response{
		Status:        fmt.Sprintf("%d %s", meta.StatusCode, http.StatusText(meta.StatusCode)),
		StatusCode:    meta.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		ContentLength: int64(len(body)),
		Request:       r,
	}
	if r.Method == http.MethodHead {
		resp.Body = http.NoBody
	} else {
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}
	return resp
}

// proxyFunc wraps base so proxy credentials are only used when the system
// proxy authentication option is on.
func proxyFunc(base func(*http.Request) (*url.URL, error), withAuth bool) func(*http.Request) (*url.URL, error) {
	if base == nil {
		return nil
	}
	return func(r *http.Request) (*url.URL, error) {
		u, err := base(r)
		if err != nil || u == nil || withAuth || u.User == nil {
			return u, err
		}
		stripped := *u
		stripped.User = nil
		return &stripped, nil
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

type errReader struct {
	err error
}

func (e *errReader) Read([]byte) (int, error) {
	return 0, e.err
}
