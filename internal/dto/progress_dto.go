package dto

import "time"

// ProgressEvent is the wire-only payload describing one step of a generation
// run. It is never persisted.
type ProgressEvent struct {
	Phase      string                 `json:"phase"`
	Step       int                    `json:"step"`
	TotalSteps int                    `json:"total_steps"`
	Message    string                 `json:"message"`
	Percentage int                    `json:"percentage"`
	Timestamp  time.Time              `json:"timestamp"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// ProgressEnvelope wraps a ProgressEvent for delivery. Id is "{jobId}-{step}".
type ProgressEnvelope struct {
	Data ProgressEvent `json:"data"`
	Id   string        `json:"id"`
	Type string        `json:"type"`
}
