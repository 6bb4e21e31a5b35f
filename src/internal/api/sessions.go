package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
	"github.com/maksimkurb/netpolicy/src/internal/session"
)

const (
	fetchTimeout      = 30 * time.Second
	maxFetchBodyBytes = 1 << 20
)

func sessionInfo(s *session.Session) SessionInfo {
	owner, _ := s.Owner.(string)
	return SessionInfo{
		ID:        s.ID,
		Private:   s.Private,
		Simple:    s.Simple,
		Owner:     owner,
		Created:   s.Created,
		UserAgent: s.Policy().UserAgentValue,
		HasCache:  s.Cache() != nil,
	}
}

// GetSessions lists live sessions.
// GET /api/v1/sessions
func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.registry().Sessions()
	out := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionInfo(s))
	}
	writeJSONData(w, SessionsResponse{Sessions: out})
}

// CreateSession creates a session from the current policy.
// POST /api/v1/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
			WriteInvalidRequest(w, "Invalid JSON: "+err.Error())
			return
		}
	}

	var owner any
	if req.Owner != "" {
		owner = req.Owner
	}
	s, err := h.registry().CreateSession(req.Private, req.Simple, owner)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeCreated(w, sessionInfo(s))
}

// CloseSession closes a session.
// DELETE /api/v1/sessions/{id}
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.registry().CloseSession(id) {
		WriteNotFound(w, "Session "+id)
		return
	}
	writeNoContent(w)
}

// Fetch sends a request through a session and returns the response.
// Bodies are returned as text and cut at 1 MiB.
// POST /api/v1/sessions/{id}/fetch
func (h *Handler) Fetch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, ok := h.registry().Session(id)
	if !ok {
		WriteNotFound(w, "Session "+id)
		return
	}

	var req FetchRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteInvalidRequest(w, "Invalid JSON: "+err.Error())
		return
	}
	target, err := url.Parse(req.URL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		WriteInvalidRequest(w, "url must be an absolute http or https URL")
		return
	}
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
	defer cancel()

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	out, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}
	for k, v := range req.Headers {
		out.Header.Set(k, v)
	}

	resp, err := s.Do(out)
	if err != nil {
		if errors.Is(err, nperrors.ErrOffline) {
			WriteDomainError(w, err)
			return
		}
		WriteError(w, http.StatusBadGateway, NewAPIError(ErrCodeUpstream, err.Error()))
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBodyBytes+1))
	if err != nil {
		WriteError(w, http.StatusBadGateway, NewAPIError(ErrCodeUpstream, "Failed to read response: "+err.Error()))
		return
	}
	truncated := len(data) > maxFetchBodyBytes
	if truncated {
		data = data[:maxFetchBodyBytes]
	}

	writeJSONData(w, FetchResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       string(data),
		Truncated:  truncated,
		FromCache:  resp.Header.Get(session.CacheStatusHeader) != "",
	})
}
