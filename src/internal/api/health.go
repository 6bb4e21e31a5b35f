package api

import (
	"fmt"
	"net/http"
)

// CheckHealth reports whether the registry runs on configured options.
// GET /api/v1/health
func (h *Handler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthCheckResponse{
		Healthy: true,
		Version: h.version,
		Checks:  make(map[string]CheckResult),
	}

	if err := h.registry().Initialize(); err != nil {
		response.Healthy = false
		response.Checks["registry"] = CheckResult{
			Passed:  false,
			Message: "Running on built-in defaults: " + err.Error(),
		}
	} else {
		response.Checks["registry"] = CheckResult{
			Passed:  true,
			Message: "Registry is initialized",
		}
	}

	if err := h.store().Config().ValidateConfig(); err != nil {
		response.Healthy = false
		response.Checks["config_validation"] = CheckResult{
			Passed:  false,
			Message: "Configuration validation failed: " + err.Error(),
		}
	} else {
		response.Checks["config_validation"] = CheckResult{
			Passed:  true,
			Message: "Configuration is valid",
		}
	}

	response.Checks["user_agents"] = CheckResult{
		Passed:  true,
		Message: fmt.Sprintf("%d user agent(s) loaded", len(h.registry().UserAgents())),
	}

	if c := h.registry().Cache(); c != nil {
		response.Checks["disk_cache"] = CheckResult{
			Passed:  true,
			Message: "Disk cache at " + c.Directory(),
		}
	} else {
		response.Checks["disk_cache"] = CheckResult{
			Passed:  true,
			Message: "Disk cache disabled",
		}
	}

	writeJSONData(w, response)
}
