package entity

import (
	"time"

	"github.com/google/uuid"
)

// GenerationJobPayload is the request captured at submission time and handed to
// the worker unchanged.
type GenerationJobPayload struct {
	SectionType string                 `json:"section_type"`
	Title       string                 `json:"title"`
	UserInput   string                 `json:"user_input,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

type GenerationJob struct {
	Id           uuid.UUID
	SectionId    uuid.UUID
	DocumentId   uuid.UUID
	TenantId     uuid.UUID
	RequestedBy  uuid.UUID
	Payload      GenerationJobPayload
	Status       string
	AttemptsMade int
	AttemptsMax  int
	Progress     int
	Result       map[string]interface{}
	FailedReason string
	CreatedAt    time.Time
	ProcessedAt  *time.Time
	CompletedAt  *time.Time
}
