package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/branch-digest/internal/app"
	"github.com/noah-isme/branch-digest/internal/config"
	"github.com/noah-isme/branch-digest/internal/history"
)

func TestBuildBackends(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]*config.Config{
		config.BackendMemory: {HistoryBackend: config.BackendMemory},
		config.BackendFile:   {HistoryBackend: config.BackendFile, HistoryFileDir: filepath.Join(dir, "files")},
		config.BackendSQLite: {HistoryBackend: config.BackendSQLite, HistorySQLitePath: filepath.Join(dir, "db", "history.db")},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			deps, err := app.Build(context.Background(), cfg, zerolog.Nop(), app.Options{})
			require.NoError(t, err)
			t.Cleanup(func() { require.NoError(t, deps.Close()) })

			require.Nil(t, deps.Redis)
			require.Nil(t, deps.Store.Locker)
			require.NoError(t, deps.Store.Ping(context.Background()))
			require.Empty(t, deps.Store.LoadAll(context.Background()))
		})
	}
}

func TestBuildRedisWithLock(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{
		HistoryBackend:     config.BackendRedis,
		HistoryKey:         "reportHistory",
		RedisURL:           "redis://" + mr.Addr(),
		HistoryLockEnabled: true,
		HistoryLockTTL:     time.Second,
	}
	deps, err := app.Build(context.Background(), cfg, zerolog.Nop(), app.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })

	require.NotNil(t, deps.Redis)
	require.NotNil(t, deps.Store.Locker)
	_, isRedis := deps.Backend.(history.RedisBackend)
	require.True(t, isRedis)
	_, guarded := deps.Store.Backend.(*history.GuardedBackend)
	require.True(t, guarded)
	require.NoError(t, deps.Store.Ping(context.Background()))
}

func TestBuildRejectsBadSettings(t *testing.T) {
	_, err := app.Build(context.Background(), &config.Config{HistoryBackend: config.BackendRedis}, zerolog.Nop(), app.Options{})
	require.Error(t, err)

	_, err = app.Build(context.Background(), &config.Config{HistoryBackend: config.BackendFile, RedisURL: "::not a url"}, zerolog.Nop(), app.Options{})
	require.Error(t, err)
}
