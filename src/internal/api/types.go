package api

import (
	"time"

	"github.com/maksimkurb/netpolicy/src/internal/registry"
	"github.com/maksimkurb/netpolicy/src/internal/useragents"
)

// DataResponse wraps successful responses with a "data" field.
type DataResponse struct {
	Data any `json:"data"`
}

// VersionInfo contains build version information.
type VersionInfo struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Commit  string `json:"commit"`
}

// HealthCheckResponse returns health check results.
type HealthCheckResponse struct {
	Healthy bool                   `json:"healthy"`
	Version VersionInfo            `json:"version"`
	Checks  map[string]CheckResult `json:"checks"`
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// PolicyResponse is the effective policy new sessions are created with.
type PolicyResponse struct {
	State          registry.State  `json:"state"`
	UserAgent      useragents.Info `json:"user_agent"`
	UserAgentValue string          `json:"user_agent_value"`
	Ciphers        []string        `json:"ciphers"`
}

// OptionsResponse returns option values keyed by option name.
type OptionsResponse struct {
	Options map[string]any `json:"options"`
	Changed []string       `json:"changed,omitempty"`
	Saved   bool           `json:"saved,omitempty"`
}

// UserAgentsResponse lists user agents in display order.
type UserAgentsResponse struct {
	UserAgents []useragents.Info `json:"user_agents"`
}

// CipherInfo describes one TLS cipher suite.
type CipherInfo struct {
	ID       uint16 `json:"id"`
	Name     string `json:"name"`
	Insecure bool   `json:"insecure"`
	Enabled  bool   `json:"enabled"`
}

// CiphersResponse lists the platform cipher suites.
type CiphersResponse struct {
	Ciphers []CipherInfo `json:"ciphers"`
}

// ClearResponse reports a clear operation.
type ClearResponse struct {
	PeriodHours int `json:"period_hours"`
	Remaining   int `json:"remaining"`
}

// CookieCountResponse reports the number of stored cookies.
type CookieCountResponse struct {
	Count      int    `json:"count"`
	Persistent bool   `json:"persistent"`
	Path       string `json:"path,omitempty"`
}

// CacheStatsResponse reports disk cache usage.
type CacheStatsResponse struct {
	Enabled     bool   `json:"enabled"`
	Directory   string `json:"directory,omitempty"`
	Entries     int    `json:"entries"`
	Size        int64  `json:"size"`
	MaximumSize int64  `json:"maximum_size"`
}

// CreateSessionRequest creates a session.
type CreateSessionRequest struct {
	Private bool   `json:"private"`
	Simple  bool   `json:"simple"`
	Owner   string `json:"owner,omitempty"`
}

// SessionInfo describes a live session.
type SessionInfo struct {
	ID        string    `json:"id"`
	Private   bool      `json:"private"`
	Simple    bool      `json:"simple"`
	Owner     string    `json:"owner,omitempty"`
	Created   time.Time `json:"created"`
	UserAgent string    `json:"user_agent"`
	HasCache  bool      `json:"has_cache"`
}

// SessionsResponse lists live sessions.
type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

// FetchRequest is a request sent through a session.
type FetchRequest struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// FetchResponse is the response received through a session.
type FetchResponse struct {
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
	Body       string              `json:"body"`
	Truncated  bool                `json:"truncated,omitempty"`
	FromCache  bool                `json:"from_cache"`
}
