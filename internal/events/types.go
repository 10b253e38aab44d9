package events

import (
	"time"

	"github.com/smazurov/rgbnode/internal/logging"
)

// Event type constants for kelindar/event.
const (
	TypeProfileApplied uint32 = iota + 1
	TypeRecordState
	TypeFormReload
	TypeDeviceStats
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ProfileAppliedEvent is published after the active profile is rendered.
type ProfileAppliedEvent struct {
	PowerOn   bool   `json:"power_on" example:"true" doc:"Whether the strip is powered"`
	Profile   int    `json:"profile" example:"2" doc:"Active profile slot"`
	Label     string `json:"label" example:"Solid Picker" doc:"Profile caption"`
	Look      string `json:"look" example:"solid" enum:"off,solid,rainbow" doc:"What the strip shows"`
	Animated  bool   `json:"animated" example:"false" doc:"Whether the rainbow animation is running"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ProfileAppliedEvent.
func (e ProfileAppliedEvent) Type() uint32 { return TypeProfileApplied }

// RecordStateEvent is published when a persisted record becomes pending
// or is written.
type RecordStateEvent struct {
	Record    string `json:"record" example:"profiles.dat" doc:"Record file name"`
	Pending   bool   `json:"pending" example:"false" doc:"Whether changes are waiting to be written"`
	Error     string `json:"error,omitempty" example:"no space left on device" doc:"Last write error"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for RecordStateEvent.
func (e RecordStateEvent) Type() uint32 { return TypeRecordState }

// GetRecord implements the record state interface for the status indicator.
func (e RecordStateEvent) GetRecord() string {
	return e.Record
}

// IsPending implements the record state interface for the status indicator.
func (e RecordStateEvent) IsPending() bool {
	return e.Pending
}

// FormReloadEvent tells form clients that the form structure changed and
// must be fetched again.
type FormReloadEvent struct {
	Reason    string `json:"reason" example:"profile" doc:"Field that changed the form structure"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for FormReloadEvent.
func (e FormReloadEvent) Type() uint32 { return TypeFormReload }

// DeviceStatsEvent carries periodic device metrics.
type DeviceStatsEvent struct {
	EventType string `json:"type"`
	PowerOn   bool   `json:"power_on"`
	Profile   int    `json:"profile"`
	FPS       string `json:"fps"`
}

// Type returns the event type identifier for DeviceStatsEvent.
func (e DeviceStatsEvent) Type() uint32 { return TypeDeviceStats }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"device" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// NewLogEntryEvent converts a buffered log entry for streaming.
func NewLogEntryEvent(e logging.LogEntry) LogEntryEvent {
	return LogEntryEvent{
		Seq:        e.Seq,
		Timestamp:  e.Timestamp.Format(time.RFC3339Nano),
		Level:      e.Level,
		Module:     e.Module,
		Message:    e.Message,
		Attributes: e.Attributes,
	}
}
