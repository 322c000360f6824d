package service

import (
	"context"
	"errors"
	"time"

	"procuredoc-be/internal/constant"
	"procuredoc-be/internal/coordinator"
	"procuredoc-be/internal/dto"
	"procuredoc-be/internal/entity"
	"procuredoc-be/internal/pkg/apperrors"
	"procuredoc-be/internal/pkg/logger"
	"procuredoc-be/internal/repository/contract"
	"procuredoc-be/internal/repository/specification"
	"procuredoc-be/internal/repository/unitofwork"
	"procuredoc-be/internal/stream"

	"github.com/google/uuid"
)

// Enqueuer is the slice of the task queue the gateway needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *entity.GenerationJob) error
}

// activeJobStatuses are the states in which a job still owns its section. A
// second submission for the same section while one of these exists is a
// replay, not a new job.
var activeJobStatuses = []string{
	constant.JobStatusQueued,
	constant.JobStatusActive,
	constant.JobStatusDelayed,
}

type ISectionService interface {
	// Submit admits a generation request: it resolves or creates the target
	// section, short-circuits to the running job when one exists, and
	// otherwise enqueues a fresh job.
	Submit(ctx context.Context, tenantId, userId uuid.UUID, req *dto.SubmitSectionRequest) (*dto.SubmitSectionResponse, error)

	// SubmitWithProgress is Submit plus a live progress stream for the
	// admitted job. The stream is registered before the job is published so
	// no early event can be missed.
	SubmitWithProgress(ctx context.Context, tenantId, userId uuid.UUID, req *dto.SubmitSectionRequest) (*dto.SubmitSectionResponse, <-chan dto.ProgressEnvelope, error)
}

type sectionService struct {
	uowFactory  unitofwork.RepositoryFactory
	coordinator coordinator.Coordinator
	queue       Enqueuer
	broker      *stream.Broker
	logger      logger.ILogger
}

func NewSectionService(
	uowFactory unitofwork.RepositoryFactory,
	coord coordinator.Coordinator,
	queue Enqueuer,
	broker *stream.Broker,
	log logger.ILogger,
) ISectionService {
	return &sectionService{
		uowFactory:  uowFactory,
		coordinator: coord,
		queue:       queue,
		broker:      broker,
		logger:      log,
	}
}

func (s *sectionService) Submit(ctx context.Context, tenantId, userId uuid.UUID, req *dto.SubmitSectionRequest) (*dto.SubmitSectionResponse, error) {
	res, job, err := s.admit(ctx, tenantId, userId, req)
	if err != nil {
		return nil, err
	}
	if job != nil {
		if err := s.queue.Enqueue(ctx, job); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *sectionService) SubmitWithProgress(ctx context.Context, tenantId, userId uuid.UUID, req *dto.SubmitSectionRequest) (*dto.SubmitSectionResponse, <-chan dto.ProgressEnvelope, error) {
	res, job, err := s.admit(ctx, tenantId, userId, req)
	if err != nil {
		return nil, nil, err
	}

	ch := s.broker.Create(res.JobId.String())

	// Nothing will run for a finished section; close right away so the
	// consumer observes the terminal signal instead of waiting out the TTL.
	if job == nil && !res.AlreadyRunning {
		s.broker.Complete(res.JobId.String())
	}

	if job != nil {
		if err := s.queue.Enqueue(ctx, job); err != nil {
			s.broker.Error(res.JobId.String(), err)
			return nil, nil, err
		}
	}
	return res, ch, nil
}

// admit performs the shared admission steps and returns the response plus the
// job to enqueue. A nil job means no new work starts: either an existing run
// absorbed the submission or the section is already done.
func (s *sectionService) admit(ctx context.Context, tenantId, userId uuid.UUID, req *dto.SubmitSectionRequest) (*dto.SubmitSectionResponse, *entity.GenerationJob, error) {
	if !constant.IsKnownSectionType(req.SectionType) {
		return nil, nil, apperrors.New(apperrors.CategoryValidationError,
			"unknown section type: "+req.SectionType)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: req.DocumentId},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, nil, err
	}
	if document == nil {
		return nil, nil, apperrors.NotFound("document")
	}

	section, err := uow.SectionRepository().FindOne(ctx,
		specification.ByDocument{DocumentID: req.DocumentId},
		specification.BySectionType{Type: req.SectionType},
	)
	if err != nil {
		return nil, nil, err
	}

	if section == nil {
		section, err = s.createSection(ctx, uow, req)
		if err != nil {
			return nil, nil, err
		}
	}

	// Idempotency guard: a live job for this section absorbs the submission.
	running, err := uow.GenerationJobRepository().FindOne(ctx,
		specification.BySection{SectionID: section.Id},
		specification.ByStatuses{Statuses: activeJobStatuses},
	)
	if err != nil {
		return nil, nil, err
	}
	if running != nil {
		s.logger.Info("Gateway", "Submission absorbed by running job", map[string]interface{}{
			"section_id": section.Id,
			"job_id":     running.Id,
		})
		return &dto.SubmitSectionResponse{
			JobId:          running.Id,
			SectionId:      section.Id,
			Status:         running.Status,
			AlreadyRunning: true,
		}, nil, nil
	}

	// A finished section is returned unchanged: resubmission must never wipe
	// content that was already generated, reviewed or approved. Regeneration
	// only happens for a pending slot (after a terminal failure) or for a
	// generating one whose job is gone.
	if isDoneSection(section.Status) {
		res := &dto.SubmitSectionResponse{
			SectionId: section.Id,
			Status:    section.Status,
		}
		completed, err := uow.GenerationJobRepository().FindOne(ctx,
			specification.BySection{SectionID: section.Id},
			specification.ByStatus{Status: constant.JobStatusCompleted},
		)
		if err != nil {
			return nil, nil, err
		}
		if completed != nil {
			res.JobId = completed.Id
			res.Status = completed.Status
		}
		s.logger.Info("Gateway", "Submission for finished section returned unchanged", map[string]interface{}{
			"section_id": section.Id,
			"status":     section.Status,
		})
		return res, nil, nil
	}

	now := time.Now()
	job := &entity.GenerationJob{
		Id:          uuid.New(),
		SectionId:   section.Id,
		DocumentId:  document.Id,
		TenantId:    tenantId,
		RequestedBy: userId,
		Payload: entity.GenerationJobPayload{
			SectionType: req.SectionType,
			Title:       req.Title,
			UserInput:   req.UserInput,
			Context:     req.Context,
		},
		CreatedAt: now,
	}

	// Regeneration reuses the slot: position survives, the section goes back
	// into flight and records which job owns it.
	section.Title = req.Title
	section.Status = constant.SectionStatusGenerating
	if section.Metadata == nil {
		section.Metadata = map[string]interface{}{}
	}
	section.Metadata["job_id"] = job.Id.String()
	section.UpdatedAt = &now
	if err := uow.SectionRepository().Update(ctx, section); err != nil {
		return nil, nil, err
	}

	return &dto.SubmitSectionResponse{
		JobId:     job.Id,
		SectionId: section.Id,
		Status:    constant.JobStatusQueued,
	}, job, nil
}

// createSection inserts the section with the next dense position. Two races
// exist against concurrent submissions and neither is an error: losing the
// (document, type) insert means the winner's row is read back and adopted; a
// collision on the position index means another type claimed the slot first,
// so a fresh order value is taken and the insert retried. Every retry implies
// a concurrent insert succeeded, so the loop always terminates.
func (s *sectionService) createSection(ctx context.Context, uow unitofwork.UnitOfWork, req *dto.SubmitSectionRequest) (*entity.Section, error) {
	for {
		position, err := s.coordinator.NextOrder(ctx, req.DocumentId)
		if err != nil {
			return nil, err
		}

		section := &entity.Section{
			Id:         uuid.New(),
			DocumentId: req.DocumentId,
			Type:       req.SectionType,
			Title:      req.Title,
			Status:     constant.SectionStatusGenerating,
			Position:   position,
			CreatedAt:  time.Now(),
		}

		err = uow.SectionRepository().Create(ctx, section)
		if err == nil {
			return section, nil
		}
		if !errors.Is(err, contract.ErrDuplicate) {
			return nil, err
		}

		existing, findErr := uow.SectionRepository().FindOne(ctx,
			specification.ByDocument{DocumentID: req.DocumentId},
			specification.BySectionType{Type: req.SectionType},
		)
		if findErr != nil {
			return nil, findErr
		}
		if existing != nil {
			s.logger.Info("Gateway", "Lost section insert race, adopting winner", map[string]interface{}{
				"document_id":  req.DocumentId,
				"section_type": req.SectionType,
			})
			return existing, nil
		}

		s.logger.Info("Gateway", "Order slot claimed concurrently, taking the next one", map[string]interface{}{
			"document_id": req.DocumentId,
			"position":    position,
		})
	}
}

// isDoneSection reports whether the section already carries finished content.
func isDoneSection(status string) bool {
	for _, done := range constant.SectionDoneStatuses {
		if done == status {
			return true
		}
	}
	return false
}
