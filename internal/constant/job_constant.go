package constant

// GenerationJob statuses (queue-facing).
const (
	JobStatusQueued    = "queued"
	JobStatusActive    = "active"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusDelayed   = "delayed"
)

// Progress event phases emitted while a section is being generated.
const (
	ProgressPhaseSanitization = "sanitization"
	ProgressPhaseEnrichment   = "enrichment"
	ProgressPhaseGeneration   = "generation"
	ProgressPhaseValidation   = "validation"
	ProgressPhaseComplete     = "complete"
	ProgressPhaseError        = "error"
)
