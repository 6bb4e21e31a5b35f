package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maksimkurb/netpolicy/src/internal/useragents"
)

// GetPolicy returns the policy a session created now would get.
// GET /api/v1/policy
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	policy := h.registry().Policy()
	writeJSONData(w, PolicyResponse{
		State:          h.registry().State(),
		UserAgent:      policy.UserAgent,
		UserAgentValue: policy.UserAgentValue,
		Ciphers:        policy.CipherNames(),
	})
}

// GetUserAgents returns every loaded user agent with placeholders expanded.
// GET /api/v1/user-agents
func (h *Handler) GetUserAgents(w http.ResponseWriter, r *http.Request) {
	ids := h.registry().UserAgents()
	out := make([]useragents.Info, 0, len(ids))
	for _, id := range ids {
		out = append(out, h.registry().UserAgent(id))
	}
	writeJSONData(w, UserAgentsResponse{UserAgents: out})
}

// GetUserAgent returns one user agent.
// GET /api/v1/user-agents/{id}
func (h *Handler) GetUserAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	info, ok := h.registry().LookupUserAgent(id)
	if !ok {
		WriteNotFound(w, "User agent "+id)
		return
	}
	writeJSONData(w, info)
}

// GetCiphers returns the platform cipher suites and marks the enabled ones.
// GET /api/v1/ciphers
func (h *Handler) GetCiphers(w http.ResponseWriter, r *http.Request) {
	enabled := make(map[uint16]bool)
	for _, suite := range h.registry().Ciphers() {
		enabled[suite.ID] = true
	}

	platform := h.registry().DefaultCiphers()
	out := make([]CipherInfo, 0, len(platform))
	for _, suite := range platform {
		out = append(out, CipherInfo{
			ID:       suite.ID,
			Name:     suite.Name,
			Insecure: suite.Insecure,
			Enabled:  enabled[suite.ID],
		})
	}
	writeJSONData(w, CiphersResponse{Ciphers: out})
}
