package service

import (
	"context"
	"time"

	"procuredoc-be/internal/constant"
	"procuredoc-be/internal/coordinator"
	"procuredoc-be/internal/dto"
	"procuredoc-be/internal/entity"
	"procuredoc-be/internal/pkg/apperrors"
	"procuredoc-be/internal/repository/specification"
	"procuredoc-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Create(ctx context.Context, tenantId, ownerId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	GetAll(ctx context.Context, tenantId uuid.UUID) ([]*dto.DocumentSummaryResponse, error)
	Show(ctx context.Context, tenantId, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	Delete(ctx context.Context, tenantId, id uuid.UUID) error

	// UpdateSection applies a manual edit to a section. The write and the
	// completion recompute share one transaction so a reader never observes
	// the new section state with a stale percentage.
	UpdateSection(ctx context.Context, tenantId uuid.UUID, req *dto.UpdateSectionRequest) (*dto.UpdateSectionResponse, error)
	DeleteSection(ctx context.Context, tenantId, documentId, sectionId uuid.UUID) error
}

type documentService struct {
	uowFactory  unitofwork.RepositoryFactory
	coordinator coordinator.Coordinator
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	coord coordinator.Coordinator,
) IDocumentService {
	return &documentService{
		uowFactory:  uowFactory,
		coordinator: coord,
	}
}

func (s *documentService) Create(ctx context.Context, tenantId, ownerId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document := entity.Document{
		Id:        uuid.New(),
		TenantId:  tenantId,
		OwnerId:   ownerId,
		Title:     req.Title,
		Status:    constant.DocumentStatusDraft,
		CreatedAt: time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}

	return &dto.CreateDocumentResponse{Id: document.Id}, nil
}

func (s *documentService) GetAll(ctx context.Context, tenantId uuid.UUID) ([]*dto.DocumentSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.TenantOwnedBy{TenantID: tenantId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.DocumentSummaryResponse, 0, len(documents))
	for _, document := range documents {
		result = append(result, &dto.DocumentSummaryResponse{
			Id:                   document.Id,
			Title:                document.Title,
			Status:               document.Status,
			CompletionPercentage: document.CompletionPercentage,
			CreatedAt:            document.CreatedAt,
			UpdatedAt:            document.UpdatedAt,
		})
	}
	return result, nil
}

func (s *documentService) Show(ctx context.Context, tenantId, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, apperrors.NotFound("document")
	}

	sections, err := uow.SectionRepository().FindAll(ctx,
		specification.ByDocument{DocumentID: document.Id},
		specification.OrderBy{Field: "position"},
	)
	if err != nil {
		return nil, err
	}

	res := dto.ShowDocumentResponse{
		Id:                   document.Id,
		Title:                document.Title,
		Status:               document.Status,
		CompletionPercentage: document.CompletionPercentage,
		Sections:             make([]*dto.SectionDetailResponse, 0, len(sections)),
		CreatedAt:            document.CreatedAt,
		UpdatedAt:            document.UpdatedAt,
	}
	for _, section := range sections {
		res.Sections = append(res.Sections, mapSectionDetail(section))
	}
	return &res, nil
}

func (s *documentService) Delete(ctx context.Context, tenantId, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return err
	}
	if document == nil {
		return apperrors.NotFound("document")
	}

	return uow.DocumentRepository().Delete(ctx, id)
}

func (s *documentService) UpdateSection(ctx context.Context, tenantId uuid.UUID, req *dto.UpdateSectionRequest) (*dto.UpdateSectionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	section, err := uow.SectionRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, apperrors.NotFound("section")
	}

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: section.DocumentId},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, apperrors.Forbidden("section")
	}

	now := time.Now()
	if req.Title != "" {
		section.Title = req.Title
	}
	if req.Content != "" {
		section.Content = req.Content
	}
	if req.Status != "" {
		section.Status = req.Status
	}
	section.UpdatedAt = &now

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.SectionRepository().Update(ctx, section); err != nil {
		return nil, err
	}
	if err := s.coordinator.RecomputeCompletionTx(uow.Tx(), section.DocumentId, tenantId); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	fresh, err := s.uowFactory.NewUnitOfWork(ctx).DocumentRepository().FindOne(ctx,
		specification.ByID{ID: section.DocumentId},
	)
	if err != nil {
		return nil, err
	}

	res := dto.UpdateSectionResponse{Id: section.Id}
	if fresh != nil {
		res.DocumentCompletion = fresh.CompletionPercentage
	}
	return &res, nil
}

func (s *documentService) DeleteSection(ctx context.Context, tenantId, documentId, sectionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return err
	}
	if document == nil {
		return apperrors.NotFound("document")
	}

	section, err := uow.SectionRepository().FindOne(ctx,
		specification.ByID{ID: sectionId},
		specification.ByDocument{DocumentID: documentId},
	)
	if err != nil {
		return err
	}
	if section == nil {
		return apperrors.NotFound("section")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.SectionRepository().Delete(ctx, sectionId); err != nil {
		return err
	}
	if err := s.coordinator.RecomputeCompletionTx(uow.Tx(), documentId, tenantId); err != nil {
		return err
	}
	return uow.Commit()
}

func mapSectionDetail(section *entity.Section) *dto.SectionDetailResponse {
	return &dto.SectionDetailResponse{
		Id:                section.Id,
		DocumentId:        section.DocumentId,
		Type:              section.Type,
		Title:             section.Title,
		Content:           section.Content,
		Status:            section.Status,
		Position:          section.Position,
		Metadata:          section.Metadata,
		ValidationResults: section.ValidationResults,
		CreatedAt:         section.CreatedAt,
		UpdatedAt:         section.UpdatedAt,
	}
}
