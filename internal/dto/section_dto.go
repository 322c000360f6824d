package dto

import (
	"time"

	"github.com/google/uuid"
)

// SubmitSectionRequest is the gateway's input: which section to generate and
// the user's instructions for the engine.
type SubmitSectionRequest struct {
	DocumentId  uuid.UUID              `json:"document_id" validate:"required"`
	SectionType string                 `json:"section_type" validate:"required"`
	Title       string                 `json:"title" validate:"required,min=3,max=255"`
	UserInput   string                 `json:"user_input" validate:"max=8000"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// SubmitSectionResponse acknowledges admission. The same shape is returned for
// fresh submissions and idempotent replays; AlreadyRunning tells them apart.
type SubmitSectionResponse struct {
	JobId          uuid.UUID `json:"job_id"`
	SectionId      uuid.UUID `json:"section_id"`
	Status         string    `json:"status"`
	AlreadyRunning bool      `json:"already_running"`
}

type SectionDetailResponse struct {
	Id                uuid.UUID              `json:"id"`
	DocumentId        uuid.UUID              `json:"document_id"`
	Type              string                 `json:"type"`
	Title             string                 `json:"title"`
	Content           string                 `json:"content,omitempty"`
	Status            string                 `json:"status"`
	Position          int                    `json:"position"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	ValidationResults map[string]interface{} `json:"validation_results,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         *time.Time             `json:"updated_at,omitempty"`
}

type UpdateSectionRequest struct {
	Id      uuid.UUID `json:"id" validate:"required"`
	Title   string    `json:"title" validate:"omitempty,min=3,max=255"`
	Content string    `json:"content"`
	Status  string    `json:"status" validate:"omitempty,oneof=pending generating generated reviewed approved"`
}

type UpdateSectionResponse struct {
	Id                 uuid.UUID `json:"id"`
	DocumentCompletion int       `json:"document_completion"`
}
