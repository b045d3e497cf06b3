package docindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RedisWithoutAddress(t *testing.T) {
	noAddr := optionFunc(func(c *clientConfig) { c.driver = "redis" })
	if _, err := New(context.Background(), noAddr); err == nil {
		t.Fatal("expected error when redis has no address")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithRedis("localhost:6379", "secret").apply(cfg)
	if cfg.driver != "redis" {
		t.Errorf("driver = %q, want redis", cfg.driver)
	}
	if cfg.addrs[0] != "localhost:6379" || cfg.password != "secret" {
		t.Errorf("addrs = %v, password = %q", cfg.addrs, cfg.password)
	}

	WithBleve("/tmp/idx").apply(cfg)
	if cfg.driver != "bleve" || cfg.dataDir != "/tmp/idx" {
		t.Errorf("driver = %q, dataDir = %q", cfg.driver, cfg.dataDir)
	}

	WithoutIndex().apply(cfg)
	if cfg.driver != "none" {
		t.Errorf("driver = %q, want none", cfg.driver)
	}

	WithSQLite("docs.db").apply(cfg)
	WithMaxBatchSize(50).apply(cfg)
	WithSearchTimeout(500 * time.Millisecond).apply(cfg)
	WithKeyPrefix("test:").apply(cfg)

	svcCfg := cfg.toConfig()
	if svcCfg.Database.Path != "docs.db" {
		t.Errorf("Database.Path = %q", svcCfg.Database.Path)
	}
	if svcCfg.Index.MaxBatchSize != 50 || svcCfg.Index.SearchTimeoutMs != 500 || svcCfg.Index.KeyPrefix != "test:" {
		t.Errorf("unexpected index config: %+v", svcCfg.Index)
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClientOptions_Defaults(t *testing.T) {
	svcCfg := (&clientConfig{}).toConfig()
	if svcCfg.Index.Driver != "bleve" {
		t.Errorf("default driver = %q, want bleve", svcCfg.Index.Driver)
	}
	if svcCfg.Index.MaxBatchSize != 100 {
		t.Errorf("default MaxBatchSize = %d, want 100", svcCfg.Index.MaxBatchSize)
	}
}

func TestClient_Close_NilApp(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("document.get", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("document.get", time.Now(), errors.New("fail"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "docindex_sdk_operations_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric samples, got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("docindex_sdk_operations_total not found")
	}

	// A second client on the same registry reuses the collectors.
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("second newObserver: %v", err)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{errors.New("boom"), "error"},
		{fmt.Errorf("search: %w", ErrIndexUnavailable), "unavailable"},
	}
	for _, tc := range tests {
		if got := statusOf(tc.err); got != tc.want {
			t.Errorf("statusOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", time.Now(), nil)
	obs.observe("test.op", time.Now(), errors.New("test error"))
}

func TestClient_EndToEnd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := New(ctx,
		WithSQLite(filepath.Join(dir, "docs.db")),
		WithBleve(filepath.Join(dir, "index")),
		WithPrometheus(prometheus.NewRegistry()),
	)
	require.NoError(t, err)
	defer c.Close()

	docs := c.Documents()
	alpha, err := docs.Create(ctx, "alpha", "")
	require.NoError(t, err)
	_, err = docs.Create(ctx, "alpha", "")
	require.ErrorIs(t, err, ErrAlreadyExists)

	page, err := c.Search().Query(ctx, "alpha", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Documents, 1)
	assert.Equal(t, alpha.ID, page.Documents[0].ID)

	require.NoError(t, docs.Unindex(ctx, alpha.ID))
	page, err = c.Search().Query(ctx, "alpha", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	n, err := c.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	page, err = c.Search().Query(ctx, "alpha", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	require.NoError(t, docs.Delete(ctx, alpha.ID))
	page, err = c.Search().Query(ctx, "alpha", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	h := c.Health(ctx)
	assert.Equal(t, "ok", h.Status)
}

func TestClient_WithoutIndex(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, WithoutIndex())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Documents().Create(ctx, "alpha", "")
	require.NoError(t, err)

	page, err := c.Search().Query(ctx, "alpha", 1, 10)
	require.NoError(t, err)
	assert.True(t, page.Unavailable)

	assert.Equal(t, "disabled", c.Health(ctx).Checks["index"])
}
