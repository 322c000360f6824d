package mapper

import (
	"time"

	"procuredoc-be/internal/entity"
	"procuredoc-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SectionMapper struct{}

func NewSectionMapper() *SectionMapper {
	return &SectionMapper{}
}

func (m *SectionMapper) ToEntity(s *model.Section) *entity.Section {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.Section{
		Id:                s.Id,
		DocumentId:        s.DocumentId,
		Type:              s.Type,
		Title:             s.Title,
		Content:           s.Content,
		Status:            s.Status,
		Position:          s.Position,
		Metadata:          map[string]interface{}(s.Metadata),
		ValidationResults: map[string]interface{}(s.ValidationResults),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         updatedAt,
		DeletedAt:         deletedAt,
		IsDeleted:         s.DeletedAt.Valid,
	}
}

func (m *SectionMapper) ToModel(s *entity.Section) *model.Section {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.Section{
		Id:                s.Id,
		DocumentId:        s.DocumentId,
		Type:              s.Type,
		Title:             s.Title,
		Content:           s.Content,
		Status:            s.Status,
		Position:          s.Position,
		Metadata:          datatypes.JSONMap(s.Metadata),
		ValidationResults: datatypes.JSONMap(s.ValidationResults),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         updatedAt,
		DeletedAt:         deletedAt,
	}
}

func (m *SectionMapper) ToEntities(sections []*model.Section) []*entity.Section {
	entities := make([]*entity.Section, len(sections))
	for i, s := range sections {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
