package dto

import (
	"time"

	"github.com/google/uuid"
)

// JobStatusResponse is the polling view of a generation job. State uses the
// client-facing vocabulary: waiting, active, delayed, completed, failed or
// unknown.
type JobStatusResponse struct {
	JobId        uuid.UUID              `json:"job_id"`
	SectionId    uuid.UUID              `json:"section_id"`
	DocumentId   uuid.UUID              `json:"document_id"`
	State        string                 `json:"state"`
	Progress     int                    `json:"progress"`
	AttemptsMade int                    `json:"attempts_made"`
	AttemptsMax  int                    `json:"attempts_max"`
	FailedReason string                 `json:"failed_reason,omitempty"`
	Result       map[string]interface{} `json:"result,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	ProcessedAt  *time.Time             `json:"processed_at,omitempty"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
}
