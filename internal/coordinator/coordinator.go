// Package coordinator holds the transactional primitives that guard the two
// derived invariants shared by concurrent writers: section ordering and the
// document completion percentage.
package coordinator

import (
	"context"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Coordinator interface {
	// NextOrder returns the next dense ordering value for a document's
	// sections. Safe under concurrent submissions: two callers never
	// receive the same value.
	NextOrder(ctx context.Context, documentID uuid.UUID) (int, error)

	// RecomputeCompletion recalculates the document's completion percentage
	// from its sections and promotes draft documents to in_progress the
	// first time the percentage rises above zero. A document missing under
	// the tenant scope is a silent no-op.
	RecomputeCompletion(ctx context.Context, documentID, tenantID uuid.UUID) error

	// RecomputeCompletionTx is RecomputeCompletion joined to an already-open
	// transaction, for callers that mutate a section and must expose the
	// recomputed document state atomically with that mutation.
	RecomputeCompletionTx(tx *gorm.DB, documentID, tenantID uuid.UUID) error
}

// CompletionPercentage is the single definition of the derived percentage:
// round(100 * done / total), 0 for an empty document.
func CompletionPercentage(done, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
