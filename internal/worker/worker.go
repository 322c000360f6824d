// Package worker executes generation jobs pulled off the task queue: it runs
// the engine pipeline for one section, persists the outcome, keeps the parent
// document's derived state consistent and streams progress to any listener.
package worker

import (
	"context"
	"time"

	"procuredoc-be/internal/constant"
	"procuredoc-be/internal/coordinator"
	"procuredoc-be/internal/dto"
	"procuredoc-be/internal/entity"
	"procuredoc-be/internal/pkg/apperrors"
	"procuredoc-be/internal/pkg/logger"
	"procuredoc-be/internal/repository/specification"
	"procuredoc-be/internal/repository/unitofwork"
	"procuredoc-be/internal/stream"
	"procuredoc-be/pkg/events"
	"procuredoc-be/pkg/generation"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const totalSteps = 4

// EventPublisher is the slice of the NATS publisher the worker needs.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Worker struct {
	uowFactory  unitofwork.RepositoryFactory
	coordinator coordinator.Coordinator
	engine      generation.Engine
	broker      *stream.Broker
	publisher   EventPublisher
	logger      logger.ILogger
	genTimeout  time.Duration
	failures    metric.Int64Counter
}

func NewWorker(
	uowFactory unitofwork.RepositoryFactory,
	coord coordinator.Coordinator,
	engine generation.Engine,
	broker *stream.Broker,
	publisher EventPublisher,
	log logger.ILogger,
	genTimeout time.Duration,
) *Worker {
	meter := otel.Meter("procuredoc-be/worker")
	failures, err := meter.Int64Counter("generation_failures_total",
		metric.WithDescription("Terminal section generation failures by category"))
	if err != nil {
		log.Warn("Worker", "Failed to register failure counter", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return &Worker{
		uowFactory:  uowFactory,
		coordinator: coord,
		engine:      engine,
		broker:      broker,
		publisher:   publisher,
		logger:      log,
		genTimeout:  genTimeout,
		failures:    failures,
	}
}

// Handle runs one job attempt. The queue owns attempt accounting and retry
// scheduling; Handle only reports success or a classifiable error.
func (w *Worker) Handle(ctx context.Context, job *entity.GenerationJob) error {
	jobID := job.Id.String()
	uow := w.uowFactory.NewUnitOfWork(ctx)
	sections := uow.SectionRepository()

	section, err := sections.FindOne(ctx,
		specification.ByID{ID: job.SectionId},
		specification.ByDocument{DocumentID: job.DocumentId},
	)
	if err != nil {
		return w.fail(ctx, job, nil, apperrors.Wrap(apperrors.Classify(err), err))
	}
	if section == nil {
		return w.fail(ctx, job, nil, apperrors.NotFound("section"))
	}

	section.Status = constant.SectionStatusGenerating
	if err := sections.Update(ctx, section); err != nil {
		return w.fail(ctx, job, section, apperrors.Wrap(apperrors.Classify(err), err))
	}

	w.progress(ctx, job, constant.ProgressPhaseSanitization, 1, 10, "Preparando os dados da seção")

	genCtx, cancel := context.WithTimeout(ctx, w.genTimeout)
	defer cancel()

	result, err := w.engine.Generate(genCtx, &generation.GenerationRequest{
		SectionType: job.Payload.SectionType,
		Title:       job.Payload.Title,
		UserInput:   job.Payload.UserInput,
		Context:     job.Payload.Context,
	})
	if err != nil {
		return w.fail(ctx, job, section, apperrors.Wrap(apperrors.Classify(err), err))
	}

	w.progress(ctx, job, constant.ProgressPhaseGeneration, 2, 90, "Conteúdo gerado, validando")

	validation, err := w.engine.Validate(genCtx, result.Content, job.Payload.SectionType)
	if err != nil {
		return w.fail(ctx, job, section, apperrors.Wrap(apperrors.Classify(err), err))
	}
	if !validation.Valid {
		appErr := apperrors.New(apperrors.CategoryValidationError, "generated content rejected by validation")
		section.ValidationResults = validation.Findings
		return w.fail(ctx, job, section, appErr)
	}

	w.progress(ctx, job, constant.ProgressPhaseValidation, 3, 95, "Validação concluída, salvando")

	section.Content = result.Content
	section.Status = constant.SectionStatusGenerated
	section.ValidationResults = validation.Findings
	if section.Metadata == nil {
		section.Metadata = make(map[string]interface{})
	}
	for k, v := range result.Metadata {
		section.Metadata[k] = v
	}
	section.Metadata["generated_at"] = time.Now().Format(time.RFC3339)
	delete(section.Metadata, "last_failure")

	if err := sections.Update(ctx, section); err != nil {
		return w.fail(ctx, job, section, apperrors.Wrap(apperrors.Classify(err), err))
	}

	if err := w.coordinator.RecomputeCompletion(ctx, job.DocumentId, job.TenantId); err != nil {
		w.logger.Error("Worker", "Completion recompute failed after generation", map[string]interface{}{
			"job_id":      jobID,
			"document_id": job.DocumentId,
			"error":       err.Error(),
		})
	}

	job.Result = map[string]interface{}{
		"section_id":   section.Id.String(),
		"section_type": section.Type,
		"content_size": len(section.Content),
	}

	w.progress(ctx, job, constant.ProgressPhaseComplete, totalSteps, 100, "Seção gerada com sucesso")
	w.broker.Complete(jobID)

	w.publishEvent(ctx, events.SectionGenerated, map[string]interface{}{
		"job_id":       jobID,
		"section_id":   section.Id.String(),
		"document_id":  job.DocumentId.String(),
		"tenant_id":    job.TenantId.String(),
		"section_type": section.Type,
	})

	w.logger.Info("Worker", "Section generated", map[string]interface{}{
		"job_id":       jobID,
		"section_id":   section.Id,
		"section_type": section.Type,
		"attempt":      job.AttemptsMade,
	})
	return nil
}

// progress persists the job's progress value and emits a stream event. Both
// are best-effort; a failed persist never aborts the pipeline.
func (w *Worker) progress(ctx context.Context, job *entity.GenerationJob, phase string, step, percentage int, message string) {
	job.Progress = percentage
	uow := w.uowFactory.NewUnitOfWork(ctx)
	if err := uow.GenerationJobRepository().Update(ctx, job); err != nil {
		w.logger.Warn("Worker", "Failed to persist job progress", map[string]interface{}{
			"job_id": job.Id,
			"error":  err.Error(),
		})
	}

	w.broker.Emit(job.Id.String(), dto.ProgressEvent{
		Phase:      phase,
		Step:       step,
		TotalSteps: totalSteps,
		Message:    message,
		Percentage: percentage,
	})
}

// fail handles one failed attempt. While retries remain for a retryable
// category the stream stays open and the section stays generating; on a
// terminal failure the section returns to pending carrying a user-safe
// explanation, the stream closes with an error event and the failure is
// counted and announced.
func (w *Worker) fail(ctx context.Context, job *entity.GenerationJob, section *entity.Section, appErr *apperrors.AppError) error {
	jobID := job.Id.String()
	terminal := !apperrors.IsRetryable(appErr.Category) || job.AttemptsMade >= job.AttemptsMax

	if !terminal {
		w.broker.Emit(jobID, dto.ProgressEvent{
			Phase:      constant.ProgressPhaseEnrichment,
			Step:       1,
			TotalSteps: totalSteps,
			Message:    "Tentativa falhou, uma nova tentativa será feita em instantes",
			Percentage: job.Progress,
			Details:    map[string]interface{}{"category": string(appErr.Category)},
		})
		w.logger.Warn("Worker", "Attempt failed, queue will retry", map[string]interface{}{
			"job_id":   jobID,
			"attempt":  job.AttemptsMade,
			"category": string(appErr.Category),
			"detail":   appErr.Detail,
		})
		return appErr
	}

	if section != nil {
		section.Status = constant.SectionStatusPending
		// The user-safe message becomes the section's visible content so the
		// document shows what happened even without the progress stream.
		section.Content = appErr.Message
		if section.Metadata == nil {
			section.Metadata = make(map[string]interface{})
		}
		section.Metadata["last_failure"] = map[string]interface{}{
			"message":   appErr.Message,
			"category":  string(appErr.Category),
			"attempts":  job.AttemptsMade,
			"failed_at": time.Now().Format(time.RFC3339),
		}

		uow := w.uowFactory.NewUnitOfWork(ctx)
		if err := uow.SectionRepository().Update(ctx, section); err != nil {
			w.logger.Error("Worker", "Failed to reset section after terminal failure", map[string]interface{}{
				"job_id":     jobID,
				"section_id": section.Id,
				"error":      err.Error(),
			})
		}
	}

	if w.failures != nil {
		w.failures.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("category", string(appErr.Category)),
				attribute.String("section_type", job.Payload.SectionType),
			))
	}

	w.broker.Error(jobID, appErr)

	w.publishEvent(ctx, events.SectionGenerationFailed, map[string]interface{}{
		"job_id":       jobID,
		"section_id":   job.SectionId.String(),
		"document_id":  job.DocumentId.String(),
		"tenant_id":    job.TenantId.String(),
		"section_type": job.Payload.SectionType,
		"category":     string(appErr.Category),
		"attempts":     job.AttemptsMade,
	})

	w.logger.Error("Worker", "Section generation failed terminally", map[string]interface{}{
		"job_id":   jobID,
		"attempt":  job.AttemptsMade,
		"category": string(appErr.Category),
		"detail":   appErr.Detail,
	})
	return appErr
}

func (w *Worker) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if w.publisher == nil {
		return
	}
	if err := w.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		w.logger.Warn("Worker", "Failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}
