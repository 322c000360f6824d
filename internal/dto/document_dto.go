package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title string `json:"title" validate:"required,min=3,max=255"`
}

type CreateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type DocumentSummaryResponse struct {
	Id                   uuid.UUID  `json:"id"`
	Title                string     `json:"title"`
	Status               string     `json:"status"`
	CompletionPercentage int        `json:"completion_percentage"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}

type ShowDocumentResponse struct {
	Id                   uuid.UUID                `json:"id"`
	Title                string                   `json:"title"`
	Status               string                   `json:"status"`
	CompletionPercentage int                      `json:"completion_percentage"`
	Sections             []*SectionDetailResponse `json:"sections"`
	CreatedAt            time.Time                `json:"created_at"`
	UpdatedAt            *time.Time               `json:"updated_at,omitempty"`
}
