package mapper

import (
	"procuredoc-be/internal/entity"
	"procuredoc-be/internal/model"

	"gorm.io/datatypes"
)

type GenerationJobMapper struct{}

func NewGenerationJobMapper() *GenerationJobMapper {
	return &GenerationJobMapper{}
}

func (m *GenerationJobMapper) ToEntity(j *model.GenerationJob) *entity.GenerationJob {
	if j == nil {
		return nil
	}

	return &entity.GenerationJob{
		Id:           j.Id,
		SectionId:    j.SectionId,
		DocumentId:   j.DocumentId,
		TenantId:     j.TenantId,
		RequestedBy:  j.RequestedBy,
		Payload:      payloadFromMap(j.Payload),
		Status:       j.Status,
		AttemptsMade: j.AttemptsMade,
		AttemptsMax:  j.AttemptsMax,
		Progress:     j.Progress,
		Result:       map[string]interface{}(j.Result),
		FailedReason: j.FailedReason,
		CreatedAt:    j.CreatedAt,
		ProcessedAt:  j.ProcessedAt,
		CompletedAt:  j.CompletedAt,
	}
}

func (m *GenerationJobMapper) ToModel(j *entity.GenerationJob) *model.GenerationJob {
	if j == nil {
		return nil
	}

	return &model.GenerationJob{
		Id:           j.Id,
		SectionId:    j.SectionId,
		DocumentId:   j.DocumentId,
		TenantId:     j.TenantId,
		RequestedBy:  j.RequestedBy,
		Payload:      payloadToMap(j.Payload),
		Status:       j.Status,
		AttemptsMade: j.AttemptsMade,
		AttemptsMax:  j.AttemptsMax,
		Progress:     j.Progress,
		Result:       datatypes.JSONMap(j.Result),
		FailedReason: j.FailedReason,
		CreatedAt:    j.CreatedAt,
		ProcessedAt:  j.ProcessedAt,
		CompletedAt:  j.CompletedAt,
	}
}

func (m *GenerationJobMapper) ToEntities(jobs []*model.GenerationJob) []*entity.GenerationJob {
	entities := make([]*entity.GenerationJob, len(jobs))
	for i, j := range jobs {
		entities[i] = m.ToEntity(j)
	}
	return entities
}

func payloadToMap(p entity.GenerationJobPayload) datatypes.JSONMap {
	out := datatypes.JSONMap{
		"section_type": p.SectionType,
		"title":        p.Title,
	}
	if p.UserInput != "" {
		out["user_input"] = p.UserInput
	}
	if p.Context != nil {
		out["context"] = p.Context
	}
	return out
}

func payloadFromMap(m datatypes.JSONMap) entity.GenerationJobPayload {
	p := entity.GenerationJobPayload{}
	if v, ok := m["section_type"].(string); ok {
		p.SectionType = v
	}
	if v, ok := m["title"].(string); ok {
		p.Title = v
	}
	if v, ok := m["user_input"].(string); ok {
		p.UserInput = v
	}
	if v, ok := m["context"].(map[string]interface{}); ok {
		p.Context = v
	}
	return p
}
