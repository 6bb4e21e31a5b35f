package api

import (
	"net/http"
	"time"
)

// CountCookies returns the number of cookies in the shared jar.
// GET /api/v1/cookies/count
func (h *Handler) CountCookies(w http.ResponseWriter, r *http.Request) {
	jar := h.registry().CookieJar()
	writeJSONData(w, CookieCountResponse{
		Count:      jar.Count(),
		Persistent: jar.IsPersistent(),
		Path:       jar.Path(),
	})
}

// ClearCookies removes cookies created within the last period_hours hours,
// or all of them when the parameter is missing or zero.
// POST /api/v1/cookies/clear?period_hours=N
func (h *Handler) ClearCookies(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}
	if err := h.registry().ClearCookies(period); err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSONData(w, ClearResponse{
		PeriodHours: int(period / time.Hour),
		Remaining:   h.registry().CookieJar().Count(),
	})
}

// GetCacheStats reports disk cache usage.
// GET /api/v1/cache/stats
func (h *Handler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	c := h.registry().Cache()
	if c == nil {
		writeJSONData(w, CacheStatsResponse{Enabled: false})
		return
	}
	stats := c.Stats()
	writeJSONData(w, CacheStatsResponse{
		Enabled:     true,
		Directory:   stats.Directory,
		Entries:     stats.Entries,
		Size:        stats.Size,
		MaximumSize: stats.MaximumSize,
	})
}

// ClearCache removes cache entries created within the last period_hours
// hours, or all of them.
// POST /api/v1/cache/clear?period_hours=N
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}
	if err := h.registry().ClearCache(period); err != nil {
		WriteDomainError(w, err)
		return
	}

	remaining := 0
	if c := h.registry().Cache(); c != nil {
		remaining = c.Stats().Entries
	}
	writeJSONData(w, ClearResponse{
		PeriodHours: int(period / time.Hour),
		Remaining:   remaining,
	})
}
