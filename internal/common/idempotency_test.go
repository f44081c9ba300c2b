package common_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/branch-digest/internal/common"
)

func newIdem(t *testing.T) common.Idem {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return common.Idem{R: client, TTL: time.Minute}
}

func post(h http.Handler, path, key string) int {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if key != "" {
		req.Header.Set(common.IdempotencyHeader, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestIdempotencyRejectsReplay(t *testing.T) {
	calls := 0
	h := newIdem(t).Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	require.Equal(t, http.StatusCreated, post(h, "/api/v1/branches/mecca-mall/reports", "abc"))
	require.Equal(t, http.StatusConflict, post(h, "/api/v1/branches/mecca-mall/reports", "abc"))
	require.Equal(t, http.StatusCreated, post(h, "/api/v1/branches/galleria-mall/reports", "abc"))
	require.Equal(t, http.StatusCreated, post(h, "/api/v1/branches/mecca-mall/reports", ""))
	require.Equal(t, http.StatusCreated, post(h, "/api/v1/branches/mecca-mall/reports", ""))
	require.Equal(t, 4, calls)
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	fail := true
	h := newIdem(t).Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	require.Equal(t, http.StatusInternalServerError, post(h, "/r", "k"))
	fail = false
	require.Equal(t, http.StatusCreated, post(h, "/r", "k"))
	require.Equal(t, http.StatusConflict, post(h, "/r", "k"))
}

func TestIdempotencyReleasesKeyUnlessCreated(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusOK, http.StatusTooManyRequests} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			next := status
			h := newIdem(t).Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(next)
			}))

			require.Equal(t, status, post(h, "/r", "k"))
			require.Equal(t, status, post(h, "/r", "k"))
			next = http.StatusCreated
			require.Equal(t, http.StatusCreated, post(h, "/r", "k"))
			require.Equal(t, http.StatusConflict, post(h, "/r", "k"))
		})
	}
}

func TestIdempotencyWithoutRedis(t *testing.T) {
	h := common.Idem{}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	require.Equal(t, http.StatusCreated, post(h, "/r", "k"))
	require.Equal(t, http.StatusCreated, post(h, "/r", "k"))
}
