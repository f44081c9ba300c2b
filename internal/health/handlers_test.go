package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/branch-digest/internal/health"
)

type stubChecker struct {
	historyErr error
	redisErr   error
}

func (s stubChecker) PingHistory(_ context.Context, _ time.Duration) error {
	return s.historyErr
}

func (s stubChecker) PingRedis(_ context.Context, _ time.Duration) error {
	return s.redisErr
}

func ready(t *testing.T, handler health.Handler) (int, map[string]string) {
	t.Helper()
	rr := httptest.NewRecorder()
	handler.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var status map[string]string
	if rr.Code == http.StatusOK || rr.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	}
	return rr.Code, status
}

func TestLive(t *testing.T) {
	rr := httptest.NewRecorder()
	health.Handler{}.Live(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}

func TestReadySuccess(t *testing.T) {
	code, status := ready(t, health.Handler{Checker: stubChecker{}, HistoryTimeout: 50 * time.Millisecond})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, map[string]string{"history": "ok", "redis": "ok"}, status)
}

func TestReadyWithRedisDisabled(t *testing.T) {
	code, status := ready(t, health.Handler{Checker: stubChecker{redisErr: health.ErrDisabled}})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "disabled", status["redis"])
}

func TestReadyFailure(t *testing.T) {
	code, status := ready(t, health.Handler{Checker: stubChecker{historyErr: errors.New("history dir missing")}})
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "history dir missing", status["history"])

	code, _ = ready(t, health.Handler{})
	require.Equal(t, http.StatusServiceUnavailable, code)
}

func TestReadinessAfterShutdown(t *testing.T) {
	handler := health.Handler{Checker: stubChecker{}}
	t.Cleanup(func() { health.SetReady(true) })

	code, _ := ready(t, handler)
	require.Equal(t, http.StatusOK, code)

	health.SetReady(false)
	code, _ = ready(t, handler)
	require.Equal(t, http.StatusServiceUnavailable, code)
}
