package api

import (
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/maksimkurb/netpolicy/src/internal/log"
)

// JSONContentType middleware enforces JSON content type for requests with body.
func JSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only check content-type for requests with body (POST, PUT, PATCH)
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength > 0 {
				ct := r.Header.Get("Content-Type")
				if ct != "application/json" && ct != "" {
					WriteInvalidRequest(w, "Content-Type must be application/json")
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Logger middleware logs all HTTP requests.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Infof("%s %s - %d (%v)", r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
	})
}

// Recovery middleware recovers from panics and returns a 500 error.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorf("Panic recovered: %v", err)
				WriteInternalError(w, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// LoopbackOnly middleware rejects requests that do not come from the local
// host. Forwarding headers are ignored: the API is never behind a proxy.
func LoopbackOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)

		ip := net.ParseIP(clientIP)
		if ip == nil {
			log.Warnf("Invalid client IP: %s", clientIP)
			WriteForbidden(w, "Access denied")
			return
		}
		if !ip.IsLoopback() {
			log.Warnf("Access denied from non-loopback IP: %s", clientIP)
			WriteForbidden(w, "Access denied: only local clients are allowed")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit middleware caps the request rate of the whole API.
func RateLimit(requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	if requestsPerSecond <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				WriteError(w, http.StatusTooManyRequests, NewAPIError(ErrCodeRateLimited, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from RemoteAddr.
func getClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
