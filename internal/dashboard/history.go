package dashboard

import (
	"sync"

	"github.com/rileyhilliard/gpumon/internal/api"
)

// DefaultHistorySize is the number of samples retained per GPU.
const DefaultHistorySize = 60

// History keeps per-GPU utilization samples in ring buffers, keyed by
// api.GPUMetrics.Key, for sparkline rendering.
type History struct {
	mu   sync.RWMutex
	size int
	gpus map[string]*ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history tracker with the specified buffer size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size: size,
		gpus: make(map[string]*ringBuffer),
	}
}

// Record pushes one sample per GPU from a metrics snapshot. GPUs absent from
// the snapshot are dropped so history does not grow without bound.
func (h *History) Record(metrics []api.GPUMetrics) {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := make(map[string]struct{}, len(metrics))
	for _, m := range metrics {
		key := m.Key()
		seen[key] = struct{}{}
		buf, ok := h.gpus[key]
		if !ok {
			buf = newRingBuffer(h.size)
			h.gpus[key] = buf
		}
		buf.push(m.Utilization)
	}
	for key := range h.gpus {
		if _, ok := seen[key]; !ok {
			delete(h.gpus, key)
		}
	}
}

// Utilization returns up to count samples for the GPU, oldest first.
func (h *History) Utilization(key string, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.gpus[key]
	if !ok {
		return nil
	}
	return buf.getLast(count)
}

// Count returns the number of samples stored for the GPU.
func (h *History) Count(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.gpus[key]
	if !ok {
		return 0
	}
	return buf.count
}

// Len returns the number of GPUs tracked.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.gpus)
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)
	// head is the next write position, so the newest value is at head-1.
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
