package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GenerationJob struct {
	Id           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SectionId    uuid.UUID         `gorm:"type:uuid;not null;index"`
	DocumentId   uuid.UUID         `gorm:"type:uuid;not null;index"`
	TenantId     uuid.UUID         `gorm:"type:uuid;not null;index"`
	RequestedBy  uuid.UUID         `gorm:"type:uuid;not null"`
	Payload      datatypes.JSONMap `gorm:"type:jsonb;not null"`
	Status       string            `gorm:"type:varchar(20);not null;default:'queued';index"`
	AttemptsMade int               `gorm:"not null;default:0"`
	AttemptsMax  int               `gorm:"not null;default:3"`
	Progress     int               `gorm:"not null;default:0"`
	Result       datatypes.JSONMap `gorm:"type:jsonb"`
	FailedReason string            `gorm:"type:text"`
	CreatedAt    time.Time         `gorm:"autoCreateTime"`
	ProcessedAt  *time.Time
	CompletedAt  *time.Time
}

func (GenerationJob) TableName() string {
	return "generation_jobs"
}
