package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id                   uuid.UUID
	TenantId             uuid.UUID
	OwnerId              uuid.UUID
	Title                string
	Status               string
	CompletionPercentage int
	Sections             []*Section
	CreatedAt            time.Time
	UpdatedAt            *time.Time
	DeletedAt            *time.Time
	IsDeleted            bool
}
