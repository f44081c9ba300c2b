package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"
)

// ErrDisabled is returned by a probe whose dependency is not configured. It does not fail readiness.
var ErrDisabled = errors.New("disabled")

var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady flips the readiness flag; the server clears it when shutdown begins.
func SetReady(v bool) {
	ready.Store(v)
}

// Checker represents dependencies that can be probed for readiness.
type Checker interface {
	PingHistory(ctx context.Context, timeout time.Duration) error
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker        Checker
	HistoryTimeout time.Duration
	RedisTimeout   time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Checker == nil || !ready.Load() {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()
	historyStatus, historyOK := probeStatus(h.Checker.PingHistory(ctx, timeoutOr(h.HistoryTimeout, 500*time.Millisecond)))
	redisStatus, redisOK := probeStatus(h.Checker.PingRedis(ctx, timeoutOr(h.RedisTimeout, 300*time.Millisecond)))
	status := map[string]string{
		"history": historyStatus,
		"redis":   redisStatus,
	}
	w.Header().Set("Content-Type", "application/json")
	if historyOK && redisOK {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func probeStatus(err error) (string, bool) {
	switch {
	case err == nil:
		return "ok", true
	case errors.Is(err, ErrDisabled):
		return ErrDisabled.Error(), true
	default:
		return err.Error(), false
	}
}

func timeoutOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
