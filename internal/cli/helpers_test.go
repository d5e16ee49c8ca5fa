package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/config"
)

// isolateCLI points HOME at a temp dir, clears GPUMON_* variables and restores
// the package-level flag values after the test.
func isolateCLI(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{
		"API_URL", "ORIGIN", "TIMEOUT", "METRICS_INTERVAL", "HEALTH_INTERVAL",
		"AUTO_REFRESH", "PAGE_SIZE", "STALE_TIME", "GC_TIME", "DEBUG", "LOG_FILE",
	} {
		key := config.EnvPrefix + "_" + name
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	saved := struct {
		configPath, apiURL, timeout, metricsAddr, logFile string
		noColor, machine                                  bool
	}{configPath, apiURLFlag, timeoutFlag, metricsAddr, logFile, noColor, machineMode}
	t.Cleanup(func() {
		configPath = saved.configPath
		apiURLFlag = saved.apiURL
		timeoutFlag = saved.timeout
		metricsAddr = saved.metricsAddr
		logFile = saved.logFile
		noColor = saved.noColor
		machineMode = saved.machine
	})

	configPath, apiURLFlag, timeoutFlag, metricsAddr, logFile = "", "", "", "", ""
	return home
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// fakeBackend serves the API under /api with canned payloads. Unset payloads
// return 404.
type fakeBackend struct {
	metrics     []api.GPUMetrics
	nodes       []api.GPUNode
	utilization []api.GPUUtilization
	health      *api.Envelope[api.Health]
	failMetrics string
}

func (b fakeBackend) start(t *testing.T) string {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get(api.PathGPUMetrics, func(w http.ResponseWriter, _ *http.Request) {
			if b.failMetrics != "" {
				writeJSON(w, http.StatusOK, api.Envelope[[]api.GPUMetrics]{Success: false, Error: b.failMetrics})
				return
			}
			if b.metrics == nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			writeJSON(w, http.StatusOK, api.Envelope[[]api.GPUMetrics]{Success: true, Data: &b.metrics})
		})
		r.Get(api.PathGPUNodes, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, api.Envelope[[]api.GPUNode]{Success: true, Data: &b.nodes})
		})
		r.Get(api.PathGPUUtilization, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, api.Envelope[[]api.GPUUtilization]{Success: true, Data: &b.utilization})
		})
		r.Get(api.PathHealth, func(w http.ResponseWriter, _ *http.Request) {
			if b.health == nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			writeJSON(w, http.StatusOK, b.health)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

var sampleTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sampleMetrics() []api.GPUMetrics {
	return []api.GPUMetrics{
		{NodeName: "node-1", GPUIndex: 0, GPUName: "A100", Utilization: 85, MemoryUsed: 30, MemoryTotal: 40, MemoryUtilization: 75, Temperature: 82, PowerDraw: 300, PowerLimit: 400, Timestamp: sampleTime},
		{NodeName: "node-1", GPUIndex: 1, GPUName: "A100", Utilization: 12, MemoryUsed: 4, MemoryTotal: 40, MemoryUtilization: 10, Temperature: 55, PowerDraw: 90, PowerLimit: 400, Timestamp: sampleTime},
		{NodeName: "node-2", GPUIndex: 0, GPUName: "H100", Utilization: 3, MemoryUsed: 1, MemoryTotal: 80, MemoryUtilization: 1, Temperature: 40, PowerDraw: 60, PowerLimit: 700, Timestamp: sampleTime.Add(-time.Minute)},
	}
}
