package entry_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/branch-digest/internal/common"
	"github.com/noah-isme/branch-digest/internal/entry"
	"github.com/noah-isme/branch-digest/internal/history"
)

type resultResponse struct {
	Data entry.Result `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newRouter(h *entry.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/branches", h.Branches)
	r.Post("/api/v1/branches/{branch}/preview", h.Preview)
	r.Post("/api/v1/branches/{branch}/reports", h.Submit)
	return r
}

func TestBranchesHandler(t *testing.T) {
	router := newRouter(&entry.Handler{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/branches", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []entry.BranchInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 3)
	require.Equal(t, "Galleria Mall", body.Data[0].ID)
	require.Equal(t, "galleria-mall", body.Data[0].Slug)
	require.Equal(t, "Fashion Gate", body.Data[2].ID)
}

func TestSubmitHandler(t *testing.T) {
	store := &history.Store{Backend: history.NewMemoryBackend()}
	router := newRouter(&entry.Handler{Service: newService(store)})

	t.Run("saves report", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/branches/mecca-mall/reports",
			strings.NewReader(`{"qty":"150","amt":"12550.75","trans":"100"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body resultResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.True(t, body.Data.Saved)
		require.Equal(t, "1.5", body.Data.Metrics.UPT)
		require.Len(t, store.LoadAll(context.Background()), 1)
	})

	t.Run("validation failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/branches/mecca-mall/reports",
			strings.NewReader(`{"qty":"1.5","amt":"10","trans":""}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		require.Contains(t, body.Error.Details, "qty")
		require.Contains(t, body.Error.Details, "trans")
		require.Len(t, store.LoadAll(context.Background()), 1)
	})

	t.Run("unknown branch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/branches/downtown/reports",
			strings.NewReader(`{"qty":"1","amt":"1","trans":"1"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/branches/mecca-mall/reports", strings.NewReader(`{`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSubmitHandlerUnsaved(t *testing.T) {
	router := newRouter(&entry.Handler{Service: newService(brokenStore{})})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/branches/galleria-mall/reports",
		strings.NewReader(`{"qty":"3","amt":"30","trans":"2"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body resultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Data.Saved)
	require.Contains(t, body.Data.Message, "Qty: 3")
}

func TestPreviewHandler(t *testing.T) {
	store := &history.Store{Backend: history.NewMemoryBackend()}
	router := newRouter(&entry.Handler{Service: newService(store)})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/branches/Fashion%20Gate/preview",
		strings.NewReader(`{"qty":"0","amt":"0","trans":"0"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body resultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "-", body.Data.Metrics.ATV)
	require.Nil(t, body.Data.Report)
	require.Empty(t, store.LoadAll(context.Background()))
}

type flakyBackend struct {
	*history.MemoryBackend
	failPuts bool
}

func (f *flakyBackend) Put(ctx context.Context, key string, value []byte) error {
	if f.failPuts {
		return errors.New("disk full")
	}
	return f.MemoryBackend.Put(ctx, key, value)
}

func TestSubmitRetryWithSameIdempotencyKey(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backend := &flakyBackend{MemoryBackend: history.NewMemoryBackend()}
	store := &history.Store{Backend: backend}
	h := &entry.Handler{Service: newService(store)}
	r := chi.NewRouter()
	r.With(common.Idem{R: client, TTL: time.Hour}.Middleware).Post("/api/v1/branches/{branch}/reports", h.Submit)

	submit := func(key, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/branches/mecca-mall/reports", strings.NewReader(body))
		req.Header.Set(common.IdempotencyHeader, key)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}
	valid := `{"qty":"150","amt":"12550.75","trans":"100"}`

	t.Run("corrected after validation failure", func(t *testing.T) {
		require.Equal(t, http.StatusBadRequest, submit("k1", `{"qty":"x","amt":"1","trans":"1"}`))
		require.Equal(t, http.StatusCreated, submit("k1", valid))
		require.Equal(t, http.StatusConflict, submit("k1", valid))
		require.Len(t, store.LoadAll(context.Background()), 1)
	})

	t.Run("retried after storage recovers", func(t *testing.T) {
		backend.failPuts = true
		require.Equal(t, http.StatusOK, submit("k2", valid))
		backend.failPuts = false
		require.Equal(t, http.StatusCreated, submit("k2", valid))
		require.Len(t, store.LoadAll(context.Background()), 2)
	})
}
