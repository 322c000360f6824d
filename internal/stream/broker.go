// Package stream implements the per-job progress channel registry. Delivery is
// best-effort: a slow or absent consumer never blocks the producer.
package stream

import (
	"fmt"
	"sync"
	"time"

	"procuredoc-be/internal/constant"
	"procuredoc-be/internal/dto"
	"procuredoc-be/internal/pkg/logger"
)

// DefaultStreamTTL bounds the lifetime of a stream abandoned by its consumer.
const DefaultStreamTTL = 5 * time.Minute

const streamBuffer = 16

type jobStream struct {
	ch    chan dto.ProgressEnvelope
	taps  []chan dto.ProgressEnvelope
	timer *time.Timer
}

// deliver fans one envelope out to the primary channel and every tap without
// blocking. Reports whether any receiver's buffer was full.
func (s *jobStream) deliver(envelope dto.ProgressEnvelope) bool {
	dropped := false
	select {
	case s.ch <- envelope:
	default:
		dropped = true
	}
	for _, tap := range s.taps {
		select {
		case tap <- envelope:
		default:
			dropped = true
		}
	}
	return dropped
}

// Broker owns the registry of per-job progress channels. It is an explicit
// dependency, scoped to process lifetime and injected where needed; there is
// no package-level instance.
type Broker struct {
	mu      sync.Mutex
	streams map[string]*jobStream
	ttl     time.Duration
	logger  logger.ILogger
}

func NewBroker(log logger.ILogger) *Broker {
	return NewBrokerWithTTL(log, DefaultStreamTTL)
}

func NewBrokerWithTTL(log logger.ILogger, ttl time.Duration) *Broker {
	return &Broker{
		streams: make(map[string]*jobStream),
		ttl:     ttl,
		logger:  log,
	}
}

// Create registers a stream for jobID and returns its receive side. If a
// stream already exists for the id it is torn down first: last submission
// wins. The stream auto-terminates after the broker TTL regardless of
// activity. Channel close is the single terminal signal a consumer observes.
func (b *Broker) Create(jobID string) <-chan dto.ProgressEnvelope {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.streams[jobID]; ok {
		b.remove(jobID, old)
	}

	s := &jobStream{
		ch: make(chan dto.ProgressEnvelope, streamBuffer),
	}
	s.timer = time.AfterFunc(b.ttl, func() {
		b.expire(jobID, s)
	})
	b.streams[jobID] = s
	return s.ch
}

// Emit delivers an event to the job's stream. Fire-and-forget: no stream, or a
// full buffer, means the event is dropped.
func (b *Broker) Emit(jobID string, event dto.ProgressEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	envelope := dto.ProgressEnvelope{
		Data: event,
		Id:   fmt.Sprintf("%s-%d", jobID, event.Step),
		Type: "progress",
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.streams[jobID]
	if !ok {
		return
	}
	if s.deliver(envelope) {
		b.logger.Warn("Broker", "Progress buffer full, dropping event", map[string]interface{}{
			"job_id": jobID,
			"phase":  event.Phase,
		})
	}
}

// Attach adds a secondary receive side to an existing stream without
// disturbing its current consumer. Every subsequent event reaches both, and
// both observe the terminal close. Returns nil when no stream is registered,
// so a late watcher never resurrects a finished run.
func (b *Broker) Attach(jobID string) <-chan dto.ProgressEnvelope {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.streams[jobID]
	if !ok {
		return nil
	}
	tap := make(chan dto.ProgressEnvelope, streamBuffer)
	s.taps = append(s.taps, tap)
	return tap
}

// Complete sends the terminal signal and deregisters the channel. Removal and
// terminal close happen under one lock acquisition, so an Emit racing with
// Complete either lands before the close or is dropped.
func (b *Broker) Complete(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.streams[jobID]; ok {
		b.remove(jobID, s)
	}
}

// Error emits one synthetic error event carrying the failure message, then
// completes and deregisters the channel.
func (b *Broker) Error(jobID string, err error) {
	message := ""
	if err != nil {
		message = err.Error()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.streams[jobID]
	if !ok {
		return
	}
	envelope := dto.ProgressEnvelope{
		Data: dto.ProgressEvent{
			Phase:     constant.ProgressPhaseError,
			Message:   message,
			Timestamp: time.Now(),
			Details:   map[string]interface{}{"error": message},
		},
		Id:   fmt.Sprintf("%s-error", jobID),
		Type: "progress",
	}
	s.deliver(envelope)
	b.remove(jobID, s)
}

func (b *Broker) HasStream(jobID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.streams[jobID]
	return ok
}

func (b *Broker) ActiveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.streams)
}

// remove must be called with b.mu held.
func (b *Broker) remove(jobID string, s *jobStream) {
	s.timer.Stop()
	delete(b.streams, jobID)
	close(s.ch)
	for _, tap := range s.taps {
		close(tap)
	}
}

func (b *Broker) expire(jobID string, s *jobStream) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Only tear down if this exact stream is still registered; it may have
	// been replaced or completed since the timer fired.
	if current, ok := b.streams[jobID]; ok && current == s {
		b.logger.Warn("Broker", "Stream TTL reached, closing", map[string]interface{}{"job_id": jobID})
		b.remove(jobID, s)
	}
}
