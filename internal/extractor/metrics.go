package extractor

import (
	"sync"
	"time"
)

// LoadMetrics tracks how often the source tree was loaded and how it went.
// All methods are safe for concurrent use.
type LoadMetrics struct {
	lastLoadTime     time.Time
	lastLoadDuration time.Duration
	lastLoadError    string
	totalLoads       int64
	successfulLoads  int64
	failedLoads      int64
	currentFileCount int
	mu               sync.RWMutex
}

// MetricsSnapshot is an immutable copy of the load metrics at a point in time.
type MetricsSnapshot struct {
	LastLoadTime     time.Time     `json:"last_load_time"`
	LastLoadDuration time.Duration `json:"last_load_duration_ns"`
	LastLoadError    string        `json:"last_load_error,omitempty"`
	TotalLoads       int64         `json:"total_loads"`
	SuccessfulLoads  int64         `json:"successful_loads"`
	FailedLoads      int64         `json:"failed_loads"`
	CurrentFileCount int           `json:"current_file_count"`
}

// NewLoadMetrics creates metrics with zero values.
func NewLoadMetrics() *LoadMetrics {
	return &LoadMetrics{}
}

// RecordLoad records the outcome of one load. fileCount is the number of
// parsed files, zero when the load failed.
func (m *LoadMetrics) RecordLoad(duration time.Duration, err error, fileCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastLoadTime = time.Now()
	m.lastLoadDuration = duration
	m.totalLoads++
	m.currentFileCount = fileCount

	if err != nil {
		m.failedLoads++
		m.lastLoadError = err.Error()
	} else {
		m.successfulLoads++
		m.lastLoadError = ""
	}
}

// Snapshot returns a copy of the current metrics.
func (m *LoadMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		LastLoadTime:     m.lastLoadTime,
		LastLoadDuration: m.lastLoadDuration,
		LastLoadError:    m.lastLoadError,
		TotalLoads:       m.totalLoads,
		SuccessfulLoads:  m.successfulLoads,
		FailedLoads:      m.failedLoads,
		CurrentFileCount: m.currentFileCount,
	}
}
