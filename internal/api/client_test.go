package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rileyhilliard/gpumon/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestClient_GPUMetrics(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var gotPath, gotAccept, gotUA string

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "GPU metrics retrieved successfully",
			"data": []GPUMetrics{
				{NodeName: "node-a", GPUIndex: 0, GPUName: "A100", Utilization: 95, Temperature: 85, Timestamp: ts},
				{NodeName: "node-b", GPUIndex: 1, GPUName: "A100", Utilization: 2, Temperature: 40, Timestamp: ts},
			},
		})
	})

	c := NewClient(srv.URL+"/api", WithLogger(logger.Noop()), WithUserAgent("gpumon/test"))
	env, err := c.GPUMetrics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/gpu/metrics", gotPath)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "gpumon/test", gotUA)

	metrics, ok := env.Payload()
	require.True(t, ok)
	require.Len(t, metrics, 2)
	assert.Equal(t, "node-a", metrics[0].NodeName)
	assert.Equal(t, 95.0, metrics[0].Utilization)
	assert.True(t, ts.Equal(metrics[1].Timestamp))
	assert.Equal(t, "node-b/1", metrics[1].Key())
	assert.Equal(t, "GPU metrics retrieved successfully", env.Message)
}

func TestClient_Endpoints(t *testing.T) {
	paths := make(chan string, 4)
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": []interface{}{}})
	})

	c := NewClient(srv.URL, WithLogger(logger.Noop()))
	ctx := context.Background()

	_, err := c.GPUNodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, PathGPUNodes, <-paths)

	_, err = c.GPUUtilization(ctx)
	require.NoError(t, err)
	assert.Equal(t, PathGPUUtilization, <-paths)

	_, err = c.GPUMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, PathGPUMetrics, <-paths)
}

func TestClient_Health(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Service is healthy",
			"data":    map[string]string{"status": "healthy", "timestamp": "2024-05-01T12:00:00Z", "version": "1.0.0"},
		})
	})

	c := NewClient(srv.URL, WithLogger(logger.Noop()))
	env, err := c.Health(context.Background())
	require.NoError(t, err)

	health, ok := env.Payload()
	require.True(t, ok)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "1.0.0", health.Version)
}

func TestEnvelope_PayloadAbsentWhenUnsuccessful(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"error":   "partial data",
			"data":    []GPUMetrics{{NodeName: "ghost"}},
		})
	})

	c := NewClient(srv.URL, WithLogger(logger.Noop()))
	env, err := c.GPUMetrics(context.Background())
	require.NoError(t, err)

	require.NotNil(t, env.Data, "the field itself was populated")
	_, ok := env.Payload()
	assert.False(t, ok)
	assert.Equal(t, "partial data", env.Error)

	var nilEnv *Envelope[[]GPUMetrics]
	_, ok = nilEnv.Payload()
	assert.False(t, ok)
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		status  int
		kind    Kind
		message string
	}{
		{http.StatusNotFound, KindNotFound, "API endpoint not found"},
		{http.StatusInternalServerError, KindServer, "Server error"},
		{http.StatusServiceUnavailable, KindUnavailable, "Service unavailable"},
		{http.StatusTeapot, KindHTTP, "HTTP error: 418"},
		{http.StatusBadGateway, KindHTTP, "HTTP error: 502"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, map[string]interface{}{"success": false, "error": "Prometheus connection failed"})
			})

			c := NewClient(srv.URL, WithLogger(logger.Noop()))
			_, err := c.GPUMetrics(context.Background())
			require.Error(t, err)

			assert.Equal(t, tt.message, err.Error())
			assert.True(t, IsKind(err, tt.kind))

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "Prometheus connection failed", apiErr.Body)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	log := logger.NewBufferLogger()
	c := NewClient(srv.URL, WithTimeout(50*time.Millisecond), WithLogger(log))

	_, err := c.GPUMetrics(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Request timeout", err.Error())
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.True(t, log.HasLevel("warn"))
	assert.True(t, log.Contains("Request timeout"))
}

func TestClient_ContextDeadline(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	c := NewClient(srv.URL, WithLogger(logger.Noop()))
	_, err := c.Health(ctx)
	assert.True(t, IsKind(err, KindTimeout))
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, WithLogger(logger.Noop()))
	_, err := c.GPUNodes(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Network error", err.Error())
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.NotNil(t, (err.(*Error)).Unwrap())
}

func TestClient_DecodeError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>proxy login</html>")) //nolint:errcheck
	})

	c := NewClient(srv.URL, WithLogger(logger.Noop()))
	_, err := c.GPUMetrics(context.Background())
	assert.Equal(t, KindDecode, KindOf(err))
	assert.Equal(t, "Invalid response body", err.Error())
}

func TestGPUUtilization_LooseFields(t *testing.T) {
	body := `{"success":true,"data":[
		{"node":"node-a","gpu_index":"1","utilization":"42.5","timestamp":1714564800.5},
		{"node":"node-b","gpu_index":"x","utilization":null,"timestamp":"1714564800"},
		{"node":"node-c","gpu_index":2,"utilization":"NaN","timestamp":{}}
	]}`

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body)) //nolint:errcheck
	})

	c := NewClient(srv.URL, WithLogger(logger.Noop()))
	env, err := c.GPUUtilization(context.Background())
	require.NoError(t, err)

	samples, ok := env.Payload()
	require.True(t, ok)
	require.Len(t, samples, 3)

	assert.Equal(t, 1, samples[0].GPUIndex.Int())
	assert.Equal(t, LooseFloat{Value: 42.5, Valid: true}, samples[0].Utilization)
	assert.Equal(t, int64(1714564800), samples[0].Time().Unix())
	assert.Equal(t, 500*time.Millisecond, time.Duration(samples[0].Time().Nanosecond()))

	assert.False(t, samples[1].GPUIndex.Valid)
	assert.False(t, samples[1].Utilization.Valid)
	assert.Equal(t, int64(1714564800), samples[1].Time().Unix())

	assert.Equal(t, 2, samples[2].GPUIndex.Int())
	assert.False(t, samples[2].Utilization.Valid)
	assert.True(t, samples[2].Time().IsZero())
}

func TestLooseFloat_MarshalJSON(t *testing.T) {
	out, err := json.Marshal([]LooseFloat{{Value: 1.5, Valid: true}, {}})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null]`, string(out))
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		origin  string
		want    string
		wantErr bool
	}{
		{"default base and origin", "", "", "http://localhost:8080/api", false},
		{"relative base", "/api", "http://monitor.internal:3000", "http://monitor.internal:3000/api", false},
		{"absolute base ignores origin", "https://gpu.example.com/api/", "http://localhost", "https://gpu.example.com/api", false},
		{"relative origin rejected", "/api", "monitor.internal", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveBaseURL(tt.base, tt.origin)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "unknown", Kind(99).String())
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.False(t, IsKind(nil, KindUnknown))
}
