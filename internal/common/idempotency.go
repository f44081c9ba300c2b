package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// IdempotencyHeader is the request header carrying the client-chosen idempotency key.
const IdempotencyHeader = "Idempotency-Key"

// Idem rejects replays of a write request that reuse an Idempotency-Key. Keys are scoped
// to method and path, so the same key may be used for different branches.
type Idem struct {
	R      *redis.Client
	TTL    time.Duration
	Prefix string
}

func (i Idem) key(r *http.Request, header string) string {
	sum := sha256.Sum256([]byte(r.Method + " " + r.URL.Path + "\n" + header))
	prefix := i.Prefix
	if prefix == "" {
		prefix = "idem:"
	}
	return prefix + hex.EncodeToString(sum[:])
}

// Middleware enforces idempotency for write endpoints. Requests without the header, or
// with no Redis configured, pass through. The key stays claimed only when the handler
// answers 201 Created; any other outcome releases it so the client can retry.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(IdempotencyHeader)
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		ttl := i.TTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		key := i.key(r, header)
		ok, err := i.R.SetNX(r.Context(), key, "1", ttl).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "idempotency store error", nil)
			return
		}
		if !ok {
			JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "duplicate request", nil)
			return
		}

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		if sw.status != http.StatusCreated {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = i.R.Del(ctx, key).Err()
		}
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
