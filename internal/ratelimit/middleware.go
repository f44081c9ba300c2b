package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/branch-digest/internal/branch"
	"github.com/noah-isme/branch-digest/internal/common"
)

// Allower decides whether one more event for key is within the limit.
type Allower interface {
	Allow(ctx context.Context, key string, window time.Duration, max int) (Decision, error)
}

// Handler enforces a per-key limit before delegating to the next handler. Limiter
// failures are logged and the request is let through.
type Handler struct {
	Limiter Allower
	Key     func(*http.Request) string
	Window  time.Duration
	Max     int
	Logger  zerolog.Logger
}

// BranchClientKey keys submissions by target branch and client address. Every spelling
// of a branch maps to its slug; unknown branches share one bucket.
func BranchClientKey(r *http.Request) string {
	slug := "unknown"
	if b, err := branch.Parse(chi.URLParam(r, "branch")); err == nil {
		slug = b.Slug()
	}
	return "submit:" + slug + ":" + common.ClientIP(r)
}

// Middleware implements chi middleware for rate limiting.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Limiter == nil || h.Key == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := h.Key(r)
		decision, err := h.Limiter.Allow(r.Context(), key, h.Window, h.Max)
		if err != nil {
			h.Logger.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(max(h.Max, 0)))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			retryAfter := int(time.Until(decision.ResetAt).Seconds())
			headers.Set("Retry-After", strconv.Itoa(max(retryAfter, 0)))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many submissions, try again later", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
