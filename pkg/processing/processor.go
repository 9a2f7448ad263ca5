package processing

import (
	"fmt"
	"math"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/rocket-telemetry/dashboard/pkg/flatbuffers/rocket_telemetry/frame"
	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
)

// Topics published by the dashboard
const (
	TopicTelemetryFrame = "telemetry.frame"
	TopicConfigNotify   = "configuration.notification"
)

// FrameEncoder serializes frame jobs as TelemetryFrame flatbuffers
type FrameEncoder struct {
	logger customlog.Logger
}

// NewFrameEncoder creates a new frame encoder
func NewFrameEncoder(logger customlog.Logger) *FrameEncoder {
	return &FrameEncoder{logger: logger}
}

// Encode builds the TelemetryFrame buffer for job
func (e *FrameEncoder) Encode(job *FrameJob) ([]byte, error) {
	if job == nil {
		return nil, fmt.Errorf("nil frame job")
	}
	if job.Index < 0 || job.Index > math.MaxInt32 || job.Total > math.MaxInt32 {
		return nil, fmt.Errorf("frame index %d out of range", job.Index)
	}

	rec := job.Record
	builder := flatbuffers.NewBuilder(256)
	sessionOffset := builder.CreateString(job.SessionID)
	datasetOffset := builder.CreateString(job.Dataset)

	frame.TelemetryFrameStart(builder)
	frame.TelemetryFrameAddSessionId(builder, sessionOffset)
	frame.TelemetryFrameAddDataset(builder, datasetOffset)
	frame.TelemetryFrameAddIndex(builder, int32(job.Index))
	frame.TelemetryFrameAddTotal(builder, int32(job.Total))
	frame.TelemetryFrameAddTimestampNs(builder, rec.Time.UnixNano())
	frame.TelemetryFrameAddElapsed(builder, rec.Elapsed)
	frame.TelemetryFrameAddLat(builder, rec.Lat)
	frame.TelemetryFrameAddLon(builder, rec.Lon)
	frame.TelemetryFrameAddGpsAlt(builder, rec.GPSAlt)
	frame.TelemetryFrameAddAlt(builder, rec.Alt)
	frame.TelemetryFrameAddAccX(builder, rec.AccX)
	frame.TelemetryFrameAddAccY(builder, rec.AccY)
	frame.TelemetryFrameAddAccZ(builder, rec.AccZ)
	frame.TelemetryFrameAddEuX(builder, rec.EuX)
	frame.TelemetryFrameAddEuY(builder, rec.EuY)
	frame.TelemetryFrameAddEuZ(builder, rec.EuZ)
	frame.TelemetryFrameAddValveState(builder, int32(rec.ValveState))
	root := frame.TelemetryFrameEnd(builder)
	frame.FinishTelemetryFrameBuffer(builder, root)

	buf := builder.FinishedBytes()
	e.logger.Debugf("Encoded frame %d/%d for session %s (%d bytes)", job.Index, job.Total, job.SessionID, len(buf))
	return buf, nil
}

// CreateProcessorFunc creates a FrameProcessor function for the ProcessingPool
func (e *FrameEncoder) CreateProcessorFunc() FrameProcessor {
	return e.Encode
}

// DecodeFrame reads a TelemetryFrame buffer into a flat map, for logging and
// for clients that do not link the generated code.
func DecodeFrame(data []byte) (map[string]interface{}, error) {
	if len(data) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("frame too short: %d bytes", len(data))
	}
	f := frame.GetRootAsTelemetryFrame(data, 0)
	return map[string]interface{}{
		"session_id":   string(f.SessionId()),
		"dataset":      string(f.Dataset()),
		"index":        int(f.Index()),
		"total":        int(f.Total()),
		"timestamp_ns": f.TimestampNs(),
		"elapsed":      f.Elapsed(),
		"lat":          f.Lat(),
		"lon":          f.Lon(),
		"gps_alt":      f.GpsAlt(),
		"alt":          f.Alt(),
		"acc_x":        f.AccX(),
		"acc_y":        f.AccY(),
		"acc_z":        f.AccZ(),
		"eu_x":         f.EuX(),
		"eu_y":         f.EuY(),
		"eu_z":         f.EuZ(),
		"valve_state":  int(f.ValveState()),
	}, nil
}
