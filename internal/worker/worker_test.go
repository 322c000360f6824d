package worker

import (
	"context"
	"errors"
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
	"procuredoc-be/pkg/generation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	generate func(ctx context.Context, req *generation.GenerationRequest) (*generation.GenerationResult, error)
	validate func(ctx context.Context, content, sectionType string) (*generation.ValidationResult, error)
}

func (e *stubEngine) Generate(ctx context.Context, req *generation.GenerationRequest) (*generation.GenerationResult, error) {
	if e.generate != nil {
		return e.generate(ctx, req)
	}
	return &generation.GenerationResult{Content: "conteúdo gerado"}, nil
}

func (e *stubEngine) Validate(ctx context.Context, content, sectionType string) (*generation.ValidationResult, error) {
	if e.validate != nil {
		return e.validate(ctx, content, sectionType)
	}
	return &generation.ValidationResult{Valid: true}, nil
}

type fixture struct {
	factory *memory.RepositoryFactory
	broker  *stream.Broker
	worker  *Worker

	tenantId uuid.UUID
	document *entity.Document
	section  *entity.Section
}

func newFixture(t *testing.T, engine generation.Engine) *fixture {
	t.Helper()
	ctx := context.Background()

	factory := memory.NewRepositoryFactory()
	coord := memory.NewCoordinator(factory.Documents, factory.Sections)
	broker := stream.NewBroker(logger.NewNopLogger())

	tenantId := uuid.New()
	document := &entity.Document{
		Id:       uuid.New(),
		TenantId: tenantId,
		OwnerId:  uuid.New(),
		Title:    "Termo de Referência",
		Status:   constant.DocumentStatusDraft,
	}
	require.NoError(t, factory.Documents.Create(ctx, document))

	section := &entity.Section{
		Id:         uuid.New(),
		DocumentId: document.Id,
		Type:       constant.SectionTypeJustificativa,
		Title:      "Justificativa",
		Status:     constant.SectionStatusPending,
		Position:   1,
	}
	require.NoError(t, factory.Sections.Create(ctx, section))

	w := NewWorker(factory, coord, engine, broker, nil, logger.NewNopLogger(), time.Second)

	return &fixture{
		factory:  factory,
		broker:   broker,
		worker:   w,
		tenantId: tenantId,
		document: document,
		section:  section,
	}
}

func (f *fixture) newJob() *entity.GenerationJob {
	return &entity.GenerationJob{
		Id:           uuid.New(),
		SectionId:    f.section.Id,
		DocumentId:   f.document.Id,
		TenantId:     f.tenantId,
		Status:       constant.JobStatusActive,
		AttemptsMade: 1,
		AttemptsMax:  3,
		Payload: entity.GenerationJobPayload{
			SectionType: constant.SectionTypeJustificativa,
			Title:       "Justificativa",
			UserInput:   "contratação de serviço de limpeza",
		},
		CreatedAt: time.Now(),
	}
}

func drain(ch <-chan dto.ProgressEnvelope) []dto.ProgressEnvelope {
	var out []dto.ProgressEnvelope
	for envelope := range ch {
		out = append(out, envelope)
	}
	return out
}

func TestHandleGeneratesSection(t *testing.T) {
	f := newFixture(t, &stubEngine{})
	ctx := context.Background()

	job := f.newJob()
	require.NoError(t, f.factory.Jobs.Create(ctx, job))
	ch := f.broker.Create(job.Id.String())

	require.NoError(t, f.worker.Handle(ctx, job))

	section, err := f.factory.Sections.FindOne(ctx, specification.ByID{ID: f.section.Id})
	require.NoError(t, err)
	require.NotNil(t, section)
	assert.Equal(t, constant.SectionStatusGenerated, section.Status)
	assert.Equal(t, "conteúdo gerado", section.Content)
	assert.Contains(t, section.Metadata, "generated_at")

	document, err := f.factory.Documents.FindOne(ctx, specification.ByID{ID: f.document.Id})
	require.NoError(t, err)
	require.NotNil(t, document)
	assert.Equal(t, 100, document.CompletionPercentage)
	assert.Equal(t, constant.DocumentStatusInProgress, document.Status)

	assert.Equal(t, f.section.Id.String(), job.Result["section_id"])

	events := drain(ch)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, constant.ProgressPhaseComplete, last.Data.Phase)
	assert.Equal(t, 100, last.Data.Percentage)
	assert.False(t, f.broker.HasStream(job.Id.String()))
}

func TestHandleTerminalValidationFailure(t *testing.T) {
	engine := &stubEngine{
		validate: func(ctx context.Context, content, sectionType string) (*generation.ValidationResult, error) {
			return &generation.ValidationResult{
				Valid:    false,
				Findings: map[string]interface{}{"missing": "fundamentação legal"},
			}, nil
		},
	}
	f := newFixture(t, engine)
	ctx := context.Background()

	job := f.newJob()
	require.NoError(t, f.factory.Jobs.Create(ctx, job))
	ch := f.broker.Create(job.Id.String())

	err := f.worker.Handle(ctx, job)
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryValidationError, apperrors.Classify(err))

	// Section returns to pending carrying the user-safe failure note.
	section, findErr := f.factory.Sections.FindOne(ctx, specification.ByID{ID: f.section.Id})
	require.NoError(t, findErr)
	require.NotNil(t, section)
	assert.Equal(t, constant.SectionStatusPending, section.Status)
	assert.Equal(t, apperrors.UserMessage(apperrors.CategoryValidationError), section.Content)
	require.Contains(t, section.Metadata, "last_failure")

	failure := section.Metadata["last_failure"].(map[string]interface{})
	assert.Equal(t, apperrors.UserMessage(apperrors.CategoryValidationError), failure["message"])
	assert.Equal(t, string(apperrors.CategoryValidationError), failure["category"])

	events := drain(ch)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, constant.ProgressPhaseError, last.Data.Phase)
	assert.False(t, f.broker.HasStream(job.Id.String()))
}

func TestHandleRetryableFailureKeepsStreamOpen(t *testing.T) {
	engine := &stubEngine{
		generate: func(ctx context.Context, req *generation.GenerationRequest) (*generation.GenerationResult, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
	}
	f := newFixture(t, engine)
	ctx := context.Background()

	job := f.newJob() // attempt 1 of 3: retries remain
	require.NoError(t, f.factory.Jobs.Create(ctx, job))
	f.broker.Create(job.Id.String())

	err := f.worker.Handle(ctx, job)
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryNetworkError, apperrors.Classify(err))

	// The section keeps its in-flight status and the stream survives for the
	// retry the queue will schedule.
	section, findErr := f.factory.Sections.FindOne(ctx, specification.ByID{ID: f.section.Id})
	require.NoError(t, findErr)
	require.NotNil(t, section)
	assert.Equal(t, constant.SectionStatusGenerating, section.Status)
	assert.NotContains(t, section.Metadata, "last_failure")
	assert.True(t, f.broker.HasStream(job.Id.String()))
}

func TestHandleExhaustedRetryableFailureIsTerminal(t *testing.T) {
	engine := &stubEngine{
		generate: func(ctx context.Context, req *generation.GenerationRequest) (*generation.GenerationResult, error) {
			return nil, errors.New("error from generation service, code 503, body overloaded")
		},
	}
	f := newFixture(t, engine)
	ctx := context.Background()

	job := f.newJob()
	job.AttemptsMade = 3 // final attempt
	require.NoError(t, f.factory.Jobs.Create(ctx, job))
	ch := f.broker.Create(job.Id.String())

	require.Error(t, f.worker.Handle(ctx, job))

	section, findErr := f.factory.Sections.FindOne(ctx, specification.ByID{ID: f.section.Id})
	require.NoError(t, findErr)
	require.NotNil(t, section)
	assert.Equal(t, constant.SectionStatusPending, section.Status)
	assert.Equal(t, apperrors.UserMessage(apperrors.CategoryServiceUnavailable), section.Content)
	assert.Contains(t, section.Metadata, "last_failure")

	events := drain(ch)
	require.NotEmpty(t, events)
	assert.Equal(t, constant.ProgressPhaseError, events[len(events)-1].Data.Phase)
}

func TestHandleMissingSectionFailsFatally(t *testing.T) {
	f := newFixture(t, &stubEngine{})
	ctx := context.Background()

	job := f.newJob()
	job.SectionId = uuid.New() // no such section
	require.NoError(t, f.factory.Jobs.Create(ctx, job))

	err := f.worker.Handle(ctx, job)
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryNotFound, apperrors.Classify(err))
	assert.False(t, apperrors.IsRetryable(apperrors.Classify(err)))
}
