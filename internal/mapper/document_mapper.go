package mapper

import (
	"time"

	"procuredoc-be/internal/entity"
	"procuredoc-be/internal/model"

	"gorm.io/gorm"
)

type DocumentMapper struct {
	sectionMapper *SectionMapper
}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{
		sectionMapper: NewSectionMapper(),
	}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	sections := make([]*entity.Section, len(d.Sections))
	for i := range d.Sections {
		sections[i] = m.sectionMapper.ToEntity(&d.Sections[i])
	}

	return &entity.Document{
		Id:                   d.Id,
		TenantId:             d.TenantId,
		OwnerId:              d.OwnerId,
		Title:                d.Title,
		Status:               d.Status,
		CompletionPercentage: d.CompletionPercentage,
		Sections:             sections,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            updatedAt,
		DeletedAt:            deletedAt,
		IsDeleted:            d.DeletedAt.Valid,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:                   d.Id,
		TenantId:             d.TenantId,
		OwnerId:              d.OwnerId,
		Title:                d.Title,
		Status:               d.Status,
		CompletionPercentage: d.CompletionPercentage,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            updatedAt,
		DeletedAt:            deletedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
