package events

import "time"

// Domain event codes emitted by the generation pipeline. Subjects on the bus
// are "events.<code>".
const (
	SectionGenerated        = "SECTION_GENERATED"
	SectionGenerationFailed = "SECTION_GENERATION_FAILED"
)

// Event is what the bus transports. Implementations must be safe to marshal.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent is the plain value implementation used by all publishers here.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string { return e.Type }

func (e BaseEvent) Payload() map[string]interface{} { return e.Data }

func (e BaseEvent) Timestamp() time.Time { return e.OccurredAt }
