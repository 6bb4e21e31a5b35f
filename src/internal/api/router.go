package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maksimkurb/netpolicy/src/internal/core"
)

const (
	rateLimitPerSecond = 50
	rateLimitBurst     = 100
)

// NewRouter creates a new HTTP router with all API endpoints.
func NewRouter(deps *core.AppDependencies, version VersionInfo) http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery)
	r.Use(Logger)
	r.Use(LoopbackOnly)
	r.Use(RateLimit(rateLimitPerSecond, rateLimitBurst))
	r.Use(JSONContentType)

	h := NewHandler(deps, version)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.CheckHealth)
		r.Get("/policy", h.GetPolicy)

		r.Get("/options", h.GetOptions)
		r.Patch("/options", h.UpdateOptions)

		r.Get("/user-agents", h.GetUserAgents)
		r.Get("/user-agents/{id}", h.GetUserAgent)

		r.Get("/ciphers", h.GetCiphers)

		r.Get("/cookies/count", h.CountCookies)
		r.Post("/cookies/clear", h.ClearCookies)

		r.Get("/cache/stats", h.GetCacheStats)
		r.Post("/cache/clear", h.ClearCache)

		r.Get("/sessions", h.GetSessions)
		r.Post("/sessions", h.CreateSession)
		r.Delete("/sessions/{id}", h.CloseSession)
		r.Post("/sessions/{id}/fetch", h.Fetch)
	})

	return r
}
