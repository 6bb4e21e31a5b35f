package cache

import (
	"net/http"
	"time"
)

const (
	bodySuffix = ".zst"
	metaSuffix = ".meta"
)

// Metadata describes a cached response.
type Metadata struct {
	URL        string      `json:"url"`
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header"`
	Created    time.Time   `json:"created"`
	// Size is the compressed size on disk.
	Size int64 `json:"size"`
	// BodySize is the size of the decompressed body.
	BodySize int64 `json:"body_size"`

	key string
}

// Stats reports cache usage.
type Stats struct {
	Directory   string `json:"directory"`
	Entries     int    `json:"entries"`
	Size        int64  `json:"size"`
	MaximumSize int64  `json:"maximum_size"`
}

// headers that are never replayed from the cache
var skippedHeaders = []string{
	"Set-Cookie",
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
	"Content-Encoding",
	"Content-Length",
}

func storedHeader(h http.Header) http.Header {
	out := h.Clone()
	if out == nil {
		out = http.Header{}
	}
	for _, name := range skippedHeaders {
		out.Del(name)
	}
	return out
}
