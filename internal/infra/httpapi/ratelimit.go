package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig is a thin configuration wrapper around the httprate
// limiter, applied to the abuse-prone routes (answering reminders, uploads).
// Requests are counted per client IP per endpoint.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Middleware builds the limiter middleware from the configuration. Exceeding
// the limit yields a JSON 429 rather than httprate's plain-text default so
// the response shape matches the rest of the API.
func (c RateLimitConfig) Middleware() func(http.Handler) http.Handler {
	return httprate.Limit(
		c.Requests,
		c.Window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, "too many requests, slow down")
		}),
	)
}
