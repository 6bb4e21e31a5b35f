package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/maksimkurb/netpolicy/src/internal/config"
	"github.com/maksimkurb/netpolicy/src/internal/core"
	"github.com/maksimkurb/netpolicy/src/internal/registry"
)

// Handler manages all API endpoints and dependencies.
type Handler struct {
	deps    *core.AppDependencies
	version VersionInfo
}

// NewHandler creates a new API handler over the given dependencies.
func NewHandler(deps *core.AppDependencies, version VersionInfo) *Handler {
	return &Handler{
		deps:    deps,
		version: version,
	}
}

func (h *Handler) registry() *registry.Registry {
	return h.deps.Registry()
}

func (h *Handler) store() *config.Store {
	return h.deps.Store()
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(DataResponse{Data: data})
}

// writeJSONData writes a successful JSON response with data.
func writeJSONData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

// writeCreated writes a 201 Created response with data.
func writeCreated(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, data)
}

// writeNoContent writes a 204 No Content response.
func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// decodeJSON decodes JSON from the request body.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// periodParam reads the period_hours query parameter. Missing means zero,
// which clears everything.
func periodParam(r *http.Request) (time.Duration, error) {
	raw := r.URL.Query().Get("period_hours")
	if raw == "" {
		return 0, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("period_hours must be a non-negative integer, got %q", raw)
	}
	return time.Duration(hours) * time.Hour, nil
}
