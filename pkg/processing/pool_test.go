package processing

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
	"github.com/rocket-telemetry/dashboard/pkg/telemetry"
)

type recordingPublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	err      error
}

func (r *recordingPublisher) PublishMessage(topic string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.topics = append(r.topics, topic)
	r.payloads = append(r.payloads, data)
	return nil
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func testJob(index int) *FrameJob {
	return &FrameJob{
		SessionID: "s-1",
		Dataset:   "Ideal Launch",
		Index:     index,
		Total:     240,
		Record: telemetry.Record{
			Time:       time.Date(2024, 6, 14, 12, 30, 0, index*50*int(time.Millisecond), time.UTC),
			Elapsed:    float64(index) * 0.05,
			Lat:        32.99,
			Lon:        -106.97,
			GPSAlt:     1400 + float64(index),
			Alt:        float64(index),
			AccX:       0.1,
			AccY:       0.2,
			AccZ:       48,
			EuX:        1,
			EuY:        85,
			EuZ:        3,
			ValveState: 1,
		},
	}
}

func TestEncodeDecodeFrame(t *testing.T) {
	enc := NewFrameEncoder(customlog.NewNopLogger())
	job := testJob(7)

	buf, err := enc.Encode(job)
	require.NoError(t, err)

	decoded, err := DecodeFrame(buf)
	require.NoError(t, err)

	assert.Equal(t, "s-1", decoded["session_id"])
	assert.Equal(t, "Ideal Launch", decoded["dataset"])
	assert.Equal(t, 7, decoded["index"])
	assert.Equal(t, 240, decoded["total"])
	assert.Equal(t, job.Record.Time.UnixNano(), decoded["timestamp_ns"])
	assert.Equal(t, 1407.0, decoded["gps_alt"])
	assert.Equal(t, 85.0, decoded["eu_y"])
	assert.Equal(t, 1, decoded["valve_state"])
}

func TestEncodeRejectsBadJobs(t *testing.T) {
	enc := NewFrameEncoder(customlog.NewNopLogger())

	_, err := enc.Encode(nil)
	assert.Error(t, err)

	_, err = enc.Encode(&FrameJob{Index: -1})
	assert.Error(t, err)

	_, err = DecodeFrame([]byte{1})
	assert.Error(t, err)
}

func TestPoolEncodesAndPublishes(t *testing.T) {
	logger := customlog.NewNopLogger()
	pub := &recordingPublisher{}

	pool := NewProcessingPool("frames", TopicTelemetryFrame, 2, 16, logger)
	pool.SetProcessor(NewFrameEncoder(logger).CreateProcessorFunc())
	pool.SetResultHandler(NewPublishingResultHandler(logger, pub).CreateHandlerFunc())
	pool.Start()

	for i := 0; i < 10; i++ {
		require.True(t, pool.Submit(testJob(i)))
	}
	pool.Stop()

	assert.Equal(t, 10, pub.count())
	for _, topic := range pub.topics {
		assert.Equal(t, TopicTelemetryFrame, topic)
	}

	m := pool.GetMetrics()
	assert.Equal(t, int64(10), m.ProcessedCount)
	assert.Equal(t, int64(10), m.QueuedCount)
	assert.Zero(t, m.ErrorCount)
}

func TestPoolRejectsWhenStopped(t *testing.T) {
	pool := NewProcessingPool("frames", TopicTelemetryFrame, 1, 4, customlog.NewNopLogger())
	assert.False(t, pool.Submit(testJob(0)))

	pool.Start()
	pool.Stop()
	assert.False(t, pool.Submit(testJob(1)))
	// stopping twice is harmless
	pool.Stop()
}

func TestPoolDropsWhenQueueIsFull(t *testing.T) {
	logger := customlog.NewNopLogger()
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	pool := NewProcessingPool("frames", TopicTelemetryFrame, 1, 1, logger)
	pool.SetProcessor(func(job *FrameJob) ([]byte, error) {
		started <- struct{}{}
		<-release
		return []byte{1}, nil
	})
	pool.Start()

	require.True(t, pool.Submit(testJob(0)))
	<-started // worker is busy, queue is empty
	require.True(t, pool.Submit(testJob(1)))
	assert.False(t, pool.Submit(testJob(2)))

	close(release)
	pool.Stop()

	assert.Equal(t, int64(1), pool.GetMetrics().DroppedCount)
}

func TestPoolCountsErrors(t *testing.T) {
	logger := customlog.NewNopLogger()
	pub := &recordingPublisher{}

	pool := NewProcessingPool("frames", TopicTelemetryFrame, 1, 4, logger)
	pool.SetProcessor(func(job *FrameJob) ([]byte, error) {
		return nil, errors.New("boom")
	})
	pool.SetResultHandler(NewPublishingResultHandler(logger, pub).CreateHandlerFunc())
	pool.Start()
	pool.Submit(testJob(0))
	pool.Stop()

	assert.Equal(t, int64(1), pool.GetMetrics().ErrorCount)
	assert.Zero(t, pub.count())
}

func TestResultHandlerPublishError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("socket closed")}
	h := NewPublishingResultHandler(customlog.NewNopLogger(), pub)

	// must not panic, the error is only logged
	h.HandleResult(&ProcessResult{Topic: TopicTelemetryFrame, Data: []byte{1, 2}})
	h.CreateHandlerFunc()(nil)
	assert.Zero(t, pub.count())
}
