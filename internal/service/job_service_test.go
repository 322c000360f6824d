package service

import (
	"context"
	"testing"
	"time"

	"procuredoc-be/internal/constant"
	"procuredoc-be/internal/entity"
	"procuredoc-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedJob(t *testing.T, factory *memory.RepositoryFactory, tenantId uuid.UUID, status string) *entity.GenerationJob {
	t.Helper()
	job := &entity.GenerationJob{
		Id:           uuid.New(),
		SectionId:    uuid.New(),
		DocumentId:   uuid.New(),
		TenantId:     tenantId,
		Status:       status,
		AttemptsMade: 1,
		AttemptsMax:  3,
		Progress:     42,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, factory.Jobs.Create(context.Background(), job))
	return job
}

func TestJobStatusMapsQueuedToWaiting(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	tenantId := uuid.New()
	job := seedJob(t, factory, tenantId, constant.JobStatusQueued)

	svc := NewJobService(factory)
	res, err := svc.Status(context.Background(), tenantId, job.Id)
	require.NoError(t, err)

	assert.Equal(t, "waiting", res.State)
	assert.Equal(t, 42, res.Progress)
	assert.Equal(t, 1, res.AttemptsMade)
	assert.Equal(t, 3, res.AttemptsMax)
}

func TestJobStatusPassesThroughTerminalStates(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	tenantId := uuid.New()

	for _, status := range []string{
		constant.JobStatusActive,
		constant.JobStatusDelayed,
		constant.JobStatusCompleted,
		constant.JobStatusFailed,
	} {
		job := seedJob(t, factory, tenantId, status)
		res, err := NewJobService(factory).Status(context.Background(), tenantId, job.Id)
		require.NoError(t, err)
		assert.Equal(t, status, res.State)
	}
}

func TestJobStatusUnknownForMissingJob(t *testing.T) {
	factory := memory.NewRepositoryFactory()

	res, err := NewJobService(factory).Status(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "unknown", res.State)
}

func TestJobStatusUnknownAcrossTenants(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	job := seedJob(t, factory, uuid.New(), constant.JobStatusActive)

	// Another tenant polling the same id must not learn the job exists.
	res, err := NewJobService(factory).Status(context.Background(), uuid.New(), job.Id)
	require.NoError(t, err)
	assert.Equal(t, "unknown", res.State)
}
