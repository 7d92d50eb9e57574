package travelagent

import "time"

type StageStatus string

const (
	StageStarted   StageStatus = "started"
	StageCompleted StageStatus = "completed"
)

// ProgressEvent reports a pipeline stage starting or finishing.
type ProgressEvent struct {
	ThreadID  string      `json:"thread_id"`
	Stage     string      `json:"stage"`
	Status    StageStatus `json:"status"`
	Message   string      `json:"message,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ProgressReporter is an interface for reporting turn progress
type ProgressReporter interface {
	Send(event *ProgressEvent) error
}

// NoOpProgressReporter implements ProgressReporter with no-op operations
type NoOpProgressReporter struct{}

func (r *NoOpProgressReporter) Send(event *ProgressEvent) error {
	return nil
}

func NewStageStarted(threadID, stage, description string) *ProgressEvent {
	return &ProgressEvent{
		ThreadID:  threadID,
		Stage:     stage,
		Status:    StageStarted,
		Message:   description,
		Timestamp: time.Now().UnixMilli(),
	}
}

func NewStageCompleted(threadID, stage string, elapsed time.Duration) *ProgressEvent {
	return &ProgressEvent{
		ThreadID:  threadID,
		Stage:     stage,
		Status:    StageCompleted,
		Message:   elapsed.Round(time.Millisecond).String(),
		Timestamp: time.Now().UnixMilli(),
	}
}
