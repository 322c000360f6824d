package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"procuredoc-be/internal/constant"
	"procuredoc-be/internal/dto"
	"procuredoc-be/internal/entity"
	"procuredoc-be/internal/pkg/apperrors"
	"procuredoc-be/internal/pkg/logger"
	"procuredoc-be/internal/repository/memory"
	"procuredoc-be/internal/repository/specification"
	"procuredoc-be/internal/stream"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureQueue stands in for the task queue: it persists the job the way
// Enqueue does, without a consumer behind it.
type captureQueue struct {
	mu       sync.Mutex
	factory  *memory.RepositoryFactory
	enqueued []*entity.GenerationJob
	err      error
}

func (q *captureQueue) Enqueue(ctx context.Context, job *entity.GenerationJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.err != nil {
		return q.err
	}
	job.Status = constant.JobStatusQueued
	job.AttemptsMax = 3
	q.enqueued = append(q.enqueued, job)
	return q.factory.Jobs.Create(ctx, job)
}

func (q *captureQueue) jobs() []*entity.GenerationJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*entity.GenerationJob(nil), q.enqueued...)
}

type gatewayFixture struct {
	factory  *memory.RepositoryFactory
	queue    *captureQueue
	broker   *stream.Broker
	service  ISectionService
	tenantId uuid.UUID
	userId   uuid.UUID
	document *entity.Document
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	ctx := context.Background()

	factory := memory.NewRepositoryFactory()
	coord := memory.NewCoordinator(factory.Documents, factory.Sections)
	broker := stream.NewBroker(logger.NewNopLogger())
	queue := &captureQueue{factory: factory}

	tenantId := uuid.New()
	document := &entity.Document{
		Id:       uuid.New(),
		TenantId: tenantId,
		OwnerId:  uuid.New(),
		Title:    "Edital de Pregão Eletrônico",
		Status:   constant.DocumentStatusDraft,
	}
	require.NoError(t, factory.Documents.Create(ctx, document))

	return &gatewayFixture{
		factory:  factory,
		queue:    queue,
		broker:   broker,
		service:  NewSectionService(factory, coord, queue, broker, logger.NewNopLogger()),
		tenantId: tenantId,
		userId:   uuid.New(),
		document: document,
	}
}

func (f *gatewayFixture) request(sectionType string) *dto.SubmitSectionRequest {
	return &dto.SubmitSectionRequest{
		DocumentId:  f.document.Id,
		SectionType: sectionType,
		Title:       "Seção de teste",
		UserInput:   "contratação de serviços contínuos",
	}
}

func TestSubmitCreatesSectionAndJob(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	res, err := f.service.Submit(ctx, f.tenantId, f.userId, f.request(constant.SectionTypeJustificativa))
	require.NoError(t, err)
	assert.False(t, res.AlreadyRunning)
	assert.Equal(t, constant.JobStatusQueued, res.Status)

	section, err := f.factory.Sections.FindOne(ctx, specification.ByID{ID: res.SectionId})
	require.NoError(t, err)
	require.NotNil(t, section)
	assert.Equal(t, constant.SectionStatusGenerating, section.Status)
	assert.Equal(t, 1, section.Position)
	assert.Equal(t, res.JobId.String(), section.Metadata["job_id"])

	require.Len(t, f.queue.enqueued, 1)
	job := f.queue.enqueued[0]
	assert.Equal(t, res.JobId, job.Id)
	assert.Equal(t, section.Id, job.SectionId)
	assert.Equal(t, f.userId, job.RequestedBy)
	assert.Equal(t, constant.SectionTypeJustificativa, job.Payload.SectionType)
}

func TestSubmitAssignsDenseOrdering(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	first, err := f.service.Submit(ctx, f.tenantId, f.userId, f.request(constant.SectionTypeObjeto))
	require.NoError(t, err)
	second, err := f.service.Submit(ctx, f.tenantId, f.userId, f.request(constant.SectionTypeJustificativa))
	require.NoError(t, err)

	s1, _ := f.factory.Sections.FindOne(ctx, specification.ByID{ID: first.SectionId})
	s2, _ := f.factory.Sections.FindOne(ctx, specification.ByID{ID: second.SectionId})
	require.NotNil(t, s1)
	require.NotNil(t, s2)
	assert.Equal(t, 1, s1.Position)
	assert.Equal(t, 2, s2.Position)
}

func TestConcurrentSubmissionsAssignDenseOrdering(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	types := constant.KnownSectionTypes
	errs := make(chan error, len(types))

	var wg sync.WaitGroup
	for _, sectionType := range types {
		wg.Add(1)
		go func(sectionType string) {
			defer wg.Done()
			_, err := f.service.Submit(ctx, f.tenantId, f.userId, f.request(sectionType))
			errs <- err
		}(sectionType)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	sections, err := f.factory.Sections.FindAll(ctx, specification.ByDocument{DocumentID: f.document.Id})
	require.NoError(t, err)
	require.Len(t, sections, len(types))

	// Order values must be exactly 1..N: no duplicates, no gaps.
	seen := make(map[int]bool, len(sections))
	for _, s := range sections {
		assert.False(t, seen[s.Position], "duplicate order value %d", s.Position)
		seen[s.Position] = true
	}
	for want := 1; want <= len(types); want++ {
		assert.True(t, seen[want], "missing order value %d", want)
	}

	assert.Len(t, f.queue.jobs(), len(types))
}

func TestResubmitWhileRunningIsIdempotent(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	first, err := f.service.Submit(ctx, f.tenantId, f.userId, f.request(constant.SectionTypeObjeto))
	require.NoError(t, err)

	second, err := f.service.Submit(ctx, f.tenantId, f.userId, f.request(constant.SectionTypeObjeto))
	require.NoError(t, err)

	assert.True(t, second.AlreadyRunning)
	assert.Equal(t, first.JobId, second.JobId)
	assert.Equal(t, first.SectionId, second.SectionId)
	assert.Len(t, f.queue.enqueued, 1, "no second job may be enqueued")
}

func TestResubmitAfterCompletionReturnsSectionUnchanged(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	first, err := f.service.Submit(ctx, f.tenantId, f.userId, f.request(constant.SectionTypeObjeto))
	require.NoError(t, err)

	// Finish the first run.
	job, _ := f.factory.Jobs.FindOne(ctx, specification.ByID{ID: first.JobId})
	require.NotNil(t, job)
	job.Status = constant.JobStatusCompleted
	require.NoError(t, f.factory.Jobs.Update(ctx, job))

	section, _ := f.factory.Sections.FindOne(ctx, specification.ByID{ID: first.SectionId})
	require.NotNil(t, section)
	section.Status = constant.SectionStatusGenerated
	section.Content = "conteúdo já gerado e conferido"
	require.NoError(t, f.factory.Sections.Update(ctx, section))

	second, err := f.service.Submit(ctx, f.tenantId, f.userId, f.request(constant.SectionTypeObjeto))
	require.NoError(t, err)

	assert.Equal(t, first.SectionId, second.SectionId)
	assert.Equal(t, first.JobId, second.JobId, "the completed run is reported back")
	assert.Equal(t, constant.JobStatusCompleted, second.Status)
	assert.Len(t, f.queue.jobs(), 1, "no new job may be enqueued for a finished section")

	refreshed, _ := f.factory.Sections.FindOne(ctx, specification.ByID{ID: first.SectionId})
	require.NotNil(t, refreshed)
	assert.Equal(t, constant.SectionStatusGenerated, refreshed.Status)
	assert.Equal(t, "conteúdo já gerado e conferido", refreshed.Content)
	assert.Equal(t, first.JobId.String(), refreshed.Metadata["job_id"])
}

func TestResubmitApprovedSectionKeepsContent(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	first, err := f.service.Submit(ctx, f.tenantId, f.userId, f.request(constant.SectionTypeRequisitos))
	require.NoError(t, err)

	section, _ := f.factory.Sections.FindOne(ctx, specification.ByID{ID: first.SectionId})
	require.NotNil(t, section)
	section.Status = constant.SectionStatusApproved
	section.Content = "requisitos aprovados pela área demandante"
	require.NoError(t, f.factory.Sections.Update(ctx, section))

	job, _ := f.factory.Jobs.FindOne(ctx, specification.ByID{ID: first.JobId})
	require.NotNil(t, job)
	job.Status = constant.JobStatusCompleted
	require.NoError(t, f.factory.Jobs.Update(ctx, job))

	second, err := f.service.Submit(ctx, f.tenantId, f.userId, f.request(constant.SectionTypeRequisitos))
	require.NoError(t, err)
	assert.Len(t, f.queue.jobs(), 1)
	assert.Equal(t, first.SectionId, second.SectionId)

	refreshed, _ := f.factory.Sections.FindOne(ctx, specification.ByID{ID: first.SectionId})
	require.NotNil(t, refreshed)
	assert.Equal(t, constant.SectionStatusApproved, refreshed.Status)
	assert.Equal(t, "requisitos aprovados pela área demandante", refreshed.Content)
}

func TestResubmitAfterTerminalFailureStartsNewJob(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	first, err := f.service.Submit(ctx, f.tenantId, f.userId, f.request(constant.SectionTypeObjeto))
	require.NoError(t, err)

	// The first run fails terminally: the queue marks the job failed and the
	// worker returns the section to pending.
	job, _ := f.factory.Jobs.FindOne(ctx, specification.ByID{ID: first.JobId})
	require.NotNil(t, job)
	job.Status = constant.JobStatusFailed
	require.NoError(t, f.factory.Jobs.Update(ctx, job))

	section, _ := f.factory.Sections.FindOne(ctx, specification.ByID{ID: first.SectionId})
	require.NotNil(t, section)
	section.Status = constant.SectionStatusPending
	require.NoError(t, f.factory.Sections.Update(ctx, section))

	second, err := f.service.Submit(ctx, f.tenantId, f.userId, f.request(constant.SectionTypeObjeto))
	require.NoError(t, err)

	assert.False(t, second.AlreadyRunning)
	assert.NotEqual(t, first.JobId, second.JobId)
	assert.Equal(t, first.SectionId, second.SectionId, "the retry reuses the section slot")

	refreshed, _ := f.factory.Sections.FindOne(ctx, specification.ByID{ID: first.SectionId})
	require.NotNil(t, refreshed)
	assert.Equal(t, constant.SectionStatusGenerating, refreshed.Status)
	assert.Equal(t, section.Position, refreshed.Position)
	assert.Equal(t, second.JobId.String(), refreshed.Metadata["job_id"])
}

func TestSubmitRejectsUnknownSectionType(t *testing.T) {
	f := newGatewayFixture(t)

	_, err := f.service.Submit(context.Background(), f.tenantId, f.userId, f.request("clausulas_secretas"))
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CategoryValidationError, appErr.Category)
}

func TestSubmitRejectsForeignTenant(t *testing.T) {
	f := newGatewayFixture(t)

	_, err := f.service.Submit(context.Background(), uuid.New(), f.userId, f.request(constant.SectionTypeObjeto))
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CategoryNotFound, appErr.Category)
}

func TestSubmitUnknownDocument(t *testing.T) {
	f := newGatewayFixture(t)

	req := f.request(constant.SectionTypeObjeto)
	req.DocumentId = uuid.New()

	_, err := f.service.Submit(context.Background(), f.tenantId, f.userId, req)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CategoryNotFound, appErr.Category)
}

func TestCreateSectionAdoptsInsertRaceWinner(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	// Simulate the losing side of the unique-index race: the winner's row is
	// already present when Create runs.
	winner := &entity.Section{
		Id:         uuid.New(),
		DocumentId: f.document.Id,
		Type:       constant.SectionTypeObjeto,
		Title:      "Objeto",
		Status:     constant.SectionStatusPending,
		Position:   1,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, f.factory.Sections.Create(ctx, winner))

	svc := f.service.(*sectionService)
	uow := f.factory.NewUnitOfWork(ctx)

	adopted, err := svc.createSection(ctx, uow, f.request(constant.SectionTypeObjeto))
	require.NoError(t, err)
	assert.Equal(t, winner.Id, adopted.Id)
}

func TestSubmitWithProgressRegistersStream(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	res, ch, err := f.service.SubmitWithProgress(ctx, f.tenantId, f.userId, f.request(constant.SectionTypeCronograma))
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.True(t, f.broker.HasStream(res.JobId.String()))

	// An event emitted for the job lands on the returned channel.
	f.broker.Emit(res.JobId.String(), dto.ProgressEvent{
		Phase:      constant.ProgressPhaseSanitization,
		Percentage: 10,
	})
	select {
	case envelope := <-ch:
		assert.Equal(t, constant.ProgressPhaseSanitization, envelope.Data.Phase)
	case <-time.After(time.Second):
		t.Fatal("expected progress on the submission stream")
	}
}

func TestSubmitWithProgressForFinishedSectionClosesStream(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	first, err := f.service.Submit(ctx, f.tenantId, f.userId, f.request(constant.SectionTypeObjeto))
	require.NoError(t, err)

	job, _ := f.factory.Jobs.FindOne(ctx, specification.ByID{ID: first.JobId})
	require.NotNil(t, job)
	job.Status = constant.JobStatusCompleted
	require.NoError(t, f.factory.Jobs.Update(ctx, job))

	section, _ := f.factory.Sections.FindOne(ctx, specification.ByID{ID: first.SectionId})
	require.NotNil(t, section)
	section.Status = constant.SectionStatusGenerated
	require.NoError(t, f.factory.Sections.Update(ctx, section))

	_, ch, err := f.service.SubmitWithProgress(ctx, f.tenantId, f.userId, f.request(constant.SectionTypeObjeto))
	require.NoError(t, err)
	require.NotNil(t, ch)

	// No run starts, so the stream carries only the terminal close.
	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("stream for a finished section should close immediately")
	}
}

func TestSubmitWithProgressTearsDownStreamOnEnqueueFailure(t *testing.T) {
	f := newGatewayFixture(t)
	f.queue.err = errors.New("transport down")

	_, ch, err := f.service.SubmitWithProgress(context.Background(), f.tenantId, f.userId, f.request(constant.SectionTypeObjeto))
	require.Error(t, err)
	assert.Nil(t, ch)
	assert.Equal(t, 0, f.broker.ActiveCount())
}
