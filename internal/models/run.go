package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	StatusQueued     RunStatus = "queued"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
	StatusCancelled  RunStatus = "cancelled"
)

// Done reports whether the run reached a terminal status.
func (s RunStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ProcessingRun is one press of the process button: a snapshot of the
// session's batch and, once finished, what the agent made of it.
type ProcessingRun struct {
	ID           uuid.UUID
	SessionID    string
	Status       RunStatus
	FileCount    int
	Batch        string
	Outcome      Outcome
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
