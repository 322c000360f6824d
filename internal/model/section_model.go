package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Section struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_sections_document_type,where:deleted_at IS NULL;uniqueIndex:idx_sections_document_position"`
	Type       string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_sections_document_type,where:deleted_at IS NULL"`
	Title      string    `gorm:"type:varchar(255);not null"`
	Content    string    `gorm:"type:text"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending'"`
	// Column named position because "order" is reserved in SQL. Unique per
	// document across deleted rows too: slots are never reused.
	Position          int               `gorm:"column:position;not null;uniqueIndex:idx_sections_document_position"`
	Metadata          datatypes.JSONMap `gorm:"type:jsonb"`
	ValidationResults datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt         time.Time         `gorm:"autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime"`
	DeletedAt         gorm.DeletedAt    `gorm:"index"`
}

func (Section) TableName() string {
	return "sections"
}
