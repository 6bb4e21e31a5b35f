package api

import (
	"errors"
	"net/http"

	"github.com/maksimkurb/netpolicy/src/internal/config"
	"github.com/maksimkurb/netpolicy/src/internal/log"
)

// GetOptions returns the effective value of every option.
// GET /api/v1/options
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	values, err := h.store().Snapshot()
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSONData(w, OptionsResponse{Options: values})
}

// UpdateOptions sets options (supports partial updates). The body maps
// option keys to values; nothing is changed when any value is rejected.
// With ?persist=true the configuration file is rewritten afterwards.
// PATCH /api/v1/options
func (h *Handler) UpdateOptions(w http.ResponseWriter, r *http.Request) {
	var updates map[string]any
	if err := decodeJSON(r, &updates); err != nil {
		WriteInvalidRequest(w, "Invalid JSON: "+err.Error())
		return
	}
	if len(updates) == 0 {
		WriteInvalidRequest(w, "No options given")
		return
	}

	changes, err := h.store().Update(updates)
	if err != nil {
		var optErrs config.OptionErrors
		if errors.As(err, &optErrs) {
			details := make(map[string]any, len(optErrs))
			for key, e := range optErrs {
				details[key] = e.Error()
			}
			WriteValidationError(w, "Option validation failed", details)
			return
		}
		WriteDomainError(w, err)
		return
	}

	response := OptionsResponse{}
	for _, change := range changes {
		response.Changed = append(response.Changed, change.Key)
	}

	if r.URL.Query().Get("persist") == "true" {
		if err := h.store().Save(); err != nil {
			log.Errorf("Failed to save options: %v", err)
			WriteInternalError(w, "Failed to save configuration: "+err.Error())
			return
		}
		response.Saved = true
	}

	response.Options, _ = h.store().Snapshot()
	writeJSONData(w, response)
}
