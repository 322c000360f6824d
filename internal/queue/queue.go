package queue

import (
	"context"
	"encoding/json"
	"time"

	"procuredoc-be/internal/constant"
	"procuredoc-be/internal/entity"
	"procuredoc-be/internal/pkg/apperrors"
	"procuredoc-be/internal/pkg/logger"
	"procuredoc-be/internal/repository/specification"
	"procuredoc-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Handler executes one generation job attempt. A nil return marks the job
// completed; an error is classified and either retried or marked failed.
type Handler func(ctx context.Context, job *entity.GenerationJob) error

type jobMessage struct {
	JobId uuid.UUID `json:"job_id"`
}

// TaskQueue persists generation jobs and drives their delivery over an
// in-process pub/sub channel. Retries are scheduled here, not by the worker:
// a failed retryable attempt parks the job as delayed and republishes it
// after a backoff, so attempts_made and attempts_max on the job row always
// reflect queue truth.
type TaskQueue struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	retry      RetryPolicy
	logger     logger.ILogger
}

func NewTaskQueue(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	retry RetryPolicy,
	log logger.ILogger,
) *TaskQueue {
	return &TaskQueue{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		retry:      retry,
		logger:     log,
	}
}

// Enqueue persists the job row as queued and publishes its id. The row is the
// durable record; the message is only a wakeup.
func (q *TaskQueue) Enqueue(ctx context.Context, job *entity.GenerationJob) error {
	job.Status = constant.JobStatusQueued
	job.AttemptsMax = q.retry.MaxAttempts

	uow := q.uowFactory.NewUnitOfWork(ctx)
	if err := uow.GenerationJobRepository().Create(ctx, job); err != nil {
		return err
	}

	return q.publish(job.Id)
}

// Run subscribes to the job topic and processes deliveries until ctx is done.
func (q *TaskQueue) Run(ctx context.Context, handler Handler) error {
	messages, err := q.pubSub.Subscribe(ctx, q.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			q.processMessage(ctx, msg, handler)
		}
	}()

	return nil
}

func (q *TaskQueue) publish(jobId uuid.UUID) error {
	payload, err := json.Marshal(jobMessage{JobId: jobId})
	if err != nil {
		return err
	}
	return q.pubSub.Publish(q.topicName, message.NewMessage(uuid.NewString(), payload))
}

func (q *TaskQueue) processMessage(ctx context.Context, msg *message.Message, handler Handler) {
	// Redelivery is ours to schedule, so every delivery is acked; a lost
	// delayed job would otherwise loop forever inside watermill.
	defer msg.Ack()

	var payload jobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		q.logger.Error("Queue", "Discarding malformed job message", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	uow := q.uowFactory.NewUnitOfWork(ctx)
	jobs := uow.GenerationJobRepository()

	job, err := jobs.FindOne(ctx, specification.ByID{ID: payload.JobId})
	if err != nil {
		q.logger.Error("Queue", "Failed to load job", map[string]interface{}{
			"job_id": payload.JobId,
			"error":  err.Error(),
		})
		return
	}
	if job == nil {
		q.logger.Warn("Queue", "Job vanished before processing", map[string]interface{}{
			"job_id": payload.JobId,
		})
		return
	}
	if job.Status == constant.JobStatusCompleted || job.Status == constant.JobStatusFailed {
		return
	}

	now := time.Now()
	job.Status = constant.JobStatusActive
	job.AttemptsMade++
	job.ProcessedAt = &now
	if err := jobs.Update(ctx, job); err != nil {
		q.logger.Error("Queue", "Failed to mark job active", map[string]interface{}{
			"job_id": job.Id,
			"error":  err.Error(),
		})
		return
	}

	handlerErr := handler(ctx, job)
	if handlerErr == nil {
		done := time.Now()
		job.Status = constant.JobStatusCompleted
		job.Progress = 100
		job.FailedReason = ""
		job.CompletedAt = &done
		if err := jobs.Update(ctx, job); err != nil {
			q.logger.Error("Queue", "Failed to mark job completed", map[string]interface{}{
				"job_id": job.Id,
				"error":  err.Error(),
			})
		}
		return
	}

	appErr, ok := apperrors.AsAppError(handlerErr)
	if !ok {
		appErr = apperrors.Wrap(apperrors.Classify(handlerErr), handlerErr)
	}
	// The visible reason is the user-safe message; the technical detail stays
	// in the logs.
	job.FailedReason = appErr.Message

	if apperrors.IsRetryable(appErr.Category) && job.AttemptsMade < job.AttemptsMax {
		job.Status = constant.JobStatusDelayed
		if err := jobs.Update(ctx, job); err != nil {
			q.logger.Error("Queue", "Failed to park delayed job", map[string]interface{}{
				"job_id": job.Id,
				"error":  err.Error(),
			})
			return
		}

		backoff := q.retry.Backoff(job.AttemptsMade)
		q.logger.Warn("Queue", "Job attempt failed, retry scheduled", map[string]interface{}{
			"job_id":   job.Id,
			"attempt":  job.AttemptsMade,
			"category": string(appErr.Category),
			"backoff":  backoff.String(),
		})

		jobId := job.Id
		time.AfterFunc(backoff, func() {
			if err := q.publish(jobId); err != nil {
				q.logger.Error("Queue", "Failed to republish delayed job", map[string]interface{}{
					"job_id": jobId,
					"error":  err.Error(),
				})
			}
		})
		return
	}

	done := time.Now()
	job.Status = constant.JobStatusFailed
	job.CompletedAt = &done
	if err := jobs.Update(ctx, job); err != nil {
		q.logger.Error("Queue", "Failed to mark job failed", map[string]interface{}{
			"job_id": job.Id,
			"error":  err.Error(),
		})
		return
	}

	q.logger.Error("Queue", "Job exhausted or hit fatal error", map[string]interface{}{
		"job_id":   job.Id,
		"attempts": job.AttemptsMade,
		"category": string(appErr.Category),
		"reason":   appErr.Detail,
	})
}
