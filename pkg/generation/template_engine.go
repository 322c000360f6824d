package generation

import (
	"context"
	"fmt"
	"strings"
)

// TemplateEngine renders deterministic placeholder content. It backs local
// development and tests when no generation service is reachable.
type TemplateEngine struct{}

func NewTemplateEngine() Engine {
	return &TemplateEngine{}
}

func (e *TemplateEngine) Generate(_ context.Context, req *GenerationRequest) (*GenerationResult, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", req.Title)
	fmt.Fprintf(&b, "Conteudo gerado para a secao '%s'.\n\n", req.SectionType)
	if req.UserInput != "" {
		fmt.Fprintf(&b, "Instrucoes consideradas: %s\n", req.UserInput)
	}

	return &GenerationResult{
		Content: b.String(),
		Metadata: map[string]interface{}{
			"engine": "template",
		},
	}, nil
}

func (e *TemplateEngine) Validate(_ context.Context, content string, _ string) (*ValidationResult, error) {
	return &ValidationResult{
		Valid: strings.TrimSpace(content) != "",
	}, nil
}
