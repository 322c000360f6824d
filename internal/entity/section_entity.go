package entity

import (
	"time"

	"github.com/google/uuid"
)

type Section struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Type       string
	Title      string
	Content    string
	Status     string
	// Position is the dense ordering value assigned by the coordinator.
	// Unique within a document; deletions may leave gaps.
	Position          int
	Metadata          map[string]interface{}
	ValidationResults map[string]interface{}
	CreatedAt         time.Time
	UpdatedAt         *time.Time
	DeletedAt         *time.Time
	IsDeleted         bool
}
