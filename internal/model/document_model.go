package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id                   uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId             uuid.UUID      `gorm:"type:uuid;not null;index"`
	OwnerId              uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title                string         `gorm:"type:varchar(255);not null"`
	Status               string         `gorm:"type:varchar(20);not null;default:'draft'"`
	CompletionPercentage int            `gorm:"not null;default:0"`
	Sections             []Section      `gorm:"foreignKey:DocumentId;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time      `gorm:"autoCreateTime"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime"`
	DeletedAt            gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
