package constant

// Document lifecycle statuses.
const (
	DocumentStatusDraft      = "draft"
	DocumentStatusInProgress = "in_progress"
	DocumentStatusReview     = "review"
	DocumentStatusCompleted  = "completed"
	DocumentStatusArchived   = "archived"
)

// Section statuses.
const (
	SectionStatusPending    = "pending"
	SectionStatusGenerating = "generating"
	SectionStatusGenerated  = "generated"
	SectionStatusReviewed   = "reviewed"
	SectionStatusApproved   = "approved"
)

// SectionDoneStatuses is the canonical "done" set for completion percentage.
// Every call site that recomputes a document's percentage counts exactly these.
var SectionDoneStatuses = []string{
	SectionStatusGenerated,
	SectionStatusReviewed,
	SectionStatusApproved,
}

// Section types supported by the generation engine.
const (
	SectionTypeJustificativa      = "justificativa"
	SectionTypeObjeto             = "objeto"
	SectionTypeFundamentacaoLegal = "fundamentacao_legal"
	SectionTypeRequisitos         = "requisitos"
	SectionTypeEstimativaCustos   = "estimativa_custos"
	SectionTypeCronograma         = "cronograma"
	SectionTypeCriteriosSelecao   = "criterios_selecao"
)

var KnownSectionTypes = []string{
	SectionTypeJustificativa,
	SectionTypeObjeto,
	SectionTypeFundamentacaoLegal,
	SectionTypeRequisitos,
	SectionTypeEstimativaCustos,
	SectionTypeCronograma,
	SectionTypeCriteriosSelecao,
}

func IsKnownSectionType(t string) bool {
	for _, known := range KnownSectionTypes {
		if known == t {
			return true
		}
	}
	return false
}
