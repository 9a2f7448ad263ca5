package diagnostic

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocket-telemetry/dashboard/pkg/processing"
)

type fixedCount int

func (f fixedCount) Count() int  { return int(f) }
func (f fixedCount) Cached() int { return int(f) }

type fakePool struct{}

func (fakePool) GetMetrics() processing.PoolMetrics {
	return processing.PoolMetrics{ProcessedCount: 42, DroppedCount: 3}
}
func (fakePool) GetQueueLength() int { return 5 }

func TestGetMetricsWithoutPool(t *testing.T) {
	svc := NewDiagnosticService(fixedCount(3), fixedCount(2), func() string { return "default" }, nil)
	svc.started = time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return svc.started.Add(90 * time.Second) }

	m := svc.GetMetrics()
	assert.Equal(t, 3, m.Sessions)
	assert.Equal(t, 2, m.CachedDatasets)
	assert.Equal(t, "default", m.LayoutID)
	assert.Equal(t, 90.0, m.UptimeSeconds)
	assert.Nil(t, m.FramePool)
	assert.False(t, m.ZeroMQ)
	assert.Positive(t, m.Goroutines)
}

func TestGetMetricsHandlerWithPool(t *testing.T) {
	svc := NewDiagnosticService(fixedCount(1), fixedCount(0), nil, fakePool{})

	app := fiber.New()
	app.Get("/diagnostics", svc.GetMetricsHandler)

	resp, err := app.Test(httptest.NewRequest("GET", "/diagnostics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		Status  string        `json:"status"`
		Metrics SystemMetrics `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "success", payload.Status)
	assert.True(t, payload.Metrics.ZeroMQ)
	assert.Equal(t, 5, payload.Metrics.QueueLength)
	require.NotNil(t, payload.Metrics.FramePool)
	assert.Equal(t, int64(42), payload.Metrics.FramePool.ProcessedCount)
	assert.Equal(t, int64(3), payload.Metrics.FramePool.DroppedCount)
}
