package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// GPUMetrics is one GPU's telemetry snapshot as reported by the backend.
// Memory values are GiB; utilization values are percentages.
type GPUMetrics struct {
	NodeName          string    `json:"node_name"`
	GPUIndex          int       `json:"gpu_index"`
	GPUName           string    `json:"gpu_name"`
	Utilization       float64   `json:"utilization"`
	MemoryUsed        float64   `json:"memory_used"`
	MemoryTotal       float64   `json:"memory_total"`
	MemoryFree        float64   `json:"memory_free,omitempty"`
	MemoryUtilization float64   `json:"memory_utilization"`
	Temperature       float64   `json:"temperature"`
	PowerDraw         float64   `json:"power_draw"`
	PowerLimit        float64   `json:"power_limit"`
	Timestamp         time.Time `json:"timestamp"`
}

// Key identifies a GPU across polls.
func (m GPUMetrics) Key() string {
	return m.NodeName + "/" + strconv.Itoa(m.GPUIndex)
}

// GPUNode is inventory data for one node carrying GPUs.
type GPUNode struct {
	NodeName  string   `json:"node_name"`
	GPUCount  int      `json:"gpu_count"`
	GPUModels []string `json:"gpu_models"`
}

// GPUUtilization is the lightweight utilization-only sample. The backend passes
// Prometheus label and sample values through untouched, so numbers may arrive
// as strings.
type GPUUtilization struct {
	Node        string     `json:"node"`
	GPUIndex    LooseFloat `json:"gpu_index"`
	Utilization LooseFloat `json:"utilization"`
	Timestamp   LooseFloat `json:"timestamp"`
}

// Time converts the unix-seconds timestamp. Invalid timestamps yield the zero time.
func (u GPUUtilization) Time() time.Time {
	if !u.Timestamp.Valid {
		return time.Time{}
	}
	sec, frac := math.Modf(u.Timestamp.Value)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

// Health is the payload of the health endpoint.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// Envelope is the {success, data, message, error} wrapper around every response.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Payload returns the data and whether it is usable. Data is treated as absent
// whenever Success is false, even if the field was populated.
func (e *Envelope[T]) Payload() (T, bool) {
	var zero T
	if e == nil || !e.Success || e.Data == nil {
		return zero, false
	}
	return *e.Data, true
}

// LooseFloat decodes a JSON number, a numeric string, or null. Anything it
// cannot parse decodes to zero with Valid=false instead of failing the whole
// response.
type LooseFloat struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *LooseFloat) UnmarshalJSON(data []byte) error {
	*f = LooseFloat{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = s
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	f.Value = v
	f.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler. Invalid values encode as null.
func (f LooseFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f.Value, 'f', -1, 64)), nil
}

// Int returns the value truncated to an int.
func (f LooseFloat) Int() int {
	return int(f.Value)
}
