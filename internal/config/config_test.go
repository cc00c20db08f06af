package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.Dashboard.PollInterval)
	assert.Equal(t, time.Second, cfg.Dashboard.HighlightDuration)
	assert.Equal(t, "/api/dashboard_data", cfg.Metrics.Path)
	assert.Equal(t, RouterHTTP, cfg.Server.Router)
	assert.Equal(t, "localhost:8080", cfg.Addr())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "15s")
	t.Setenv("METRICS_BASE_URL", "http://billing.internal")
	t.Setenv("ROUTER", RouterFiber)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.Dashboard.PollInterval)
	assert.Equal(t, "http://billing.internal", cfg.Metrics.BaseURL)
	assert.Equal(t, RouterFiber, cfg.Server.Router)
}

func TestLoadReadsDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HIGHLIGHT_DURATION=250ms\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("HIGHLIGHT_DURATION") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Dashboard.HighlightDuration)
}

func TestLoadRejectsInvalidRouter(t *testing.T) {
	t.Setenv("ROUTER", "gin")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROUTER")
}
