package service

import (
	"context"

	"procuredoc-be/internal/constant"
	"procuredoc-be/internal/dto"
	"procuredoc-be/internal/repository/specification"
	"procuredoc-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IJobService interface {
	// Status returns the polling view of a job. An id the tenant cannot see
	// resolves to state "unknown" rather than an error, so pollers of
	// expired jobs degrade quietly.
	Status(ctx context.Context, tenantId, jobId uuid.UUID) (*dto.JobStatusResponse, error)
}

type jobService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewJobService(uowFactory unitofwork.RepositoryFactory) IJobService {
	return &jobService{uowFactory: uowFactory}
}

func (s *jobService) Status(ctx context.Context, tenantId, jobId uuid.UUID) (*dto.JobStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.GenerationJobRepository().FindOne(ctx,
		specification.ByID{ID: jobId},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return &dto.JobStatusResponse{
			JobId: jobId,
			State: "unknown",
		}, nil
	}

	return &dto.JobStatusResponse{
		JobId:        job.Id,
		SectionId:    job.SectionId,
		DocumentId:   job.DocumentId,
		State:        clientState(job.Status),
		Progress:     job.Progress,
		AttemptsMade: job.AttemptsMade,
		AttemptsMax:  job.AttemptsMax,
		FailedReason: job.FailedReason,
		Result:       job.Result,
		CreatedAt:    job.CreatedAt,
		ProcessedAt:  job.ProcessedAt,
		CompletedAt:  job.CompletedAt,
	}, nil
}

// clientState maps internal job statuses onto the vocabulary pollers expect.
func clientState(status string) string {
	if status == constant.JobStatusQueued {
		return "waiting"
	}
	return status
}
