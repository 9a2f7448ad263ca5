package diagnostic

import (
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rocket-telemetry/dashboard/pkg/processing"
)

// SystemMetrics represents dashboard diagnostics information
type SystemMetrics struct {
	Timestamp      time.Time               `json:"timestamp"`
	UptimeSeconds  float64                 `json:"uptime_seconds"`
	Goroutines     int                     `json:"goroutines"`
	HeapAllocBytes uint64                  `json:"heap_alloc_bytes"`
	Sessions       int                     `json:"sessions"`
	CachedDatasets int                     `json:"cached_datasets"`
	LayoutID       string                  `json:"layout_id"`
	FramePool      *processing.PoolMetrics `json:"frame_pool,omitempty"`
	QueueLength    int                     `json:"queue_length"`
	ZeroMQ         bool                    `json:"zeromq_enabled"`
}

// SessionCounter reports live sessions
type SessionCounter interface {
	Count() int
}

// DatasetCache reports parsed bundled datasets
type DatasetCache interface {
	Cached() int
}

// FramePool is the part of processing.ProcessingPool diagnostics read
type FramePool interface {
	GetMetrics() processing.PoolMetrics
	GetQueueLength() int
}

// LayoutIdentifier reports the active layout id
type LayoutIdentifier func() string

// DiagnosticService collects dashboard health on demand
type DiagnosticService struct {
	started  time.Time
	sessions SessionCounter
	datasets DatasetCache
	layoutID LayoutIdentifier
	pool     FramePool
	now      func() time.Time
}

// NewDiagnosticService creates a new diagnostic service instance.
// pool may be nil when frame publishing is disabled.
func NewDiagnosticService(sessions SessionCounter, datasets DatasetCache, layoutID LayoutIdentifier, pool FramePool) *DiagnosticService {
	return &DiagnosticService{
		started:  time.Now(),
		sessions: sessions,
		datasets: datasets,
		layoutID: layoutID,
		pool:     pool,
		now:      time.Now,
	}
}

// GetMetrics returns the current metrics
func (s *DiagnosticService) GetMetrics() SystemMetrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	now := s.now()
	metrics := SystemMetrics{
		Timestamp:      now,
		UptimeSeconds:  now.Sub(s.started).Seconds(),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		Sessions:       s.sessions.Count(),
		CachedDatasets: s.datasets.Cached(),
	}
	if s.layoutID != nil {
		metrics.LayoutID = s.layoutID()
	}
	if s.pool != nil {
		pm := s.pool.GetMetrics()
		metrics.FramePool = &pm
		metrics.QueueLength = s.pool.GetQueueLength()
		metrics.ZeroMQ = true
	}
	return metrics
}

// GetMetricsHandler handles API requests for system metrics
func (s *DiagnosticService) GetMetricsHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"metrics": s.GetMetrics(),
	})
}
