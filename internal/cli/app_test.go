package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rileyhilliard/gpumon/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FlagOverrides(t *testing.T) {
	isolateCLI(t)
	path := filepath.Join(t.TempDir(), "gpumon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://file/api\ntimeout: 5s\n"), 0o644))

	configPath = path
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://file/api", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)

	apiURLFlag = "http://flag/api"
	timeoutFlag = "12s"
	logFile = "/tmp/gpumon.log"
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://flag/api", cfg.APIURL)
	assert.Equal(t, 12*time.Second, cfg.Timeout)
	assert.Equal(t, "/tmp/gpumon.log", cfg.LogFile)
}

func TestLoadConfig_InvalidTimeoutFlag(t *testing.T) {
	isolateCLI(t)
	timeoutFlag = "forever"

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forever")
}

func TestNewApp_ResolvesRelativeURL(t *testing.T) {
	isolateCLI(t)
	cfg, err := loadConfig()
	require.NoError(t, err)

	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "http://localhost:8080/api", a.api.BaseURL())
	assert.Equal(t, []string{"gpu/metrics", "gpu/nodes", "gpu/utilization", "health"}, keyStrings(a))
	assert.Empty(t, a.queries.CachedKeys())
}

func keyStrings(a *app) []string {
	var out []string
	for _, k := range a.queries.Registered() {
		out = append(out, string(k))
	}
	return out
}

func newRouterServer(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	srv := httptest.NewServer(metricsRouter(reg))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestMetricsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "gpumon_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	srv := newRouterServer(t, reg)

	resp, err := http.Get(srv + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "gpumon_test_total 1")

	resp, err = http.Get(srv + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStartMetricsServer_BadAddress(t *testing.T) {
	_, err := startMetricsServer("not-an-address", prometheus.NewRegistry(), logger.Noop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--metrics-addr")
}
