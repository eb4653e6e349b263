package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
)

// KeyFunc extracts a rate limit key from the request.
type KeyFunc func(r *http.Request) string

// DeniedHandler writes the response for a denied request.
type DeniedHandler func(w http.ResponseWriter, r *http.Request, result *Result)

// ClientIP keys requests by client address. The first X-Forwarded-For entry
// wins when present so limits follow the real client behind a proxy.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func defaultDenied(w http.ResponseWriter, r *http.Request, result *Result) {
	http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
}

// Middleware creates an HTTP middleware enforcing the limiter per key.
// Store failures inside the limiter admit the request, so the middleware
// itself never turns a counter outage into an error response.
func Middleware(limiter *Limiter, keyFunc KeyFunc, onDenied DeniedHandler) func(http.Handler) http.Handler {
	if onDenied == nil {
		onDenied = defaultDenied
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := limiter.Allow(r.Context(), keyFunc(r))
			if err != nil {
				// Misconfiguration, not a store outage; surface it.
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				if retryAfter := int(result.RetryAfter().Seconds()); retryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				}
				onDenied(w, r, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
