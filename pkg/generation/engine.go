package generation

import "context"

// Engine produces and validates section content for procurement documents.
type Engine interface {
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)
	Validate(ctx context.Context, content string, sectionType string) (*ValidationResult, error)
}

type GenerationRequest struct {
	SectionType string                 `json:"section_type"`
	Title       string                 `json:"title"`
	UserInput   string                 `json:"user_input"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

type GenerationResult struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type ValidationResult struct {
	Valid    bool                   `json:"valid"`
	Findings map[string]interface{} `json:"findings,omitempty"`
}
