package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	domainerrors "github.com/eydough/awc-code-updater/internal/errors"
	"github.com/eydough/awc-code-updater/internal/http/response"
	"github.com/eydough/awc-code-updater/internal/ratelimit"
)

// rateLimitMessage is returned when a client exceeds its request budget.
const rateLimitMessage = "Too many requests. Please try again later."

// RateLimitMiddleware rate limits /api requests by client IP.
// Returns 429 Too Many Requests when limit is exceeded.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, apiPrefix) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				response.HandleError(w, domainerrors.RateLimited(rateLimitMessage), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of RemoteAddr. middleware.RealIP has
// already replaced it with the forwarded address when one was sent.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
