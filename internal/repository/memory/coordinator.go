package memory

import (
	"context"
	"sync"

	"procuredoc-be/internal/constant"
	"procuredoc-be/internal/coordinator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coordinator mirrors the gorm coordinator's semantics over the in-memory
// repositories; its mutex stands in for the database's row locks.
type Coordinator struct {
	mu       sync.Mutex
	docs     *DocumentRepository
	sections *SectionRepository
}

func NewCoordinator(docs *DocumentRepository, sections *SectionRepository) *Coordinator {
	return &Coordinator{
		docs:     docs,
		sections: sections,
	}
}

func (c *Coordinator) NextOrder(ctx context.Context, documentID uuid.UUID) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sections.mu.Lock()
	defer c.sections.mu.Unlock()

	// Deleted sections keep their slot, same as the Unscoped SQL read.
	next := 1
	for _, s := range c.sections.sections {
		if s.DocumentId == documentID && s.Position >= next {
			next = s.Position + 1
		}
	}
	return next, nil
}

func (c *Coordinator) RecomputeCompletion(ctx context.Context, documentID, tenantID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs.mu.Lock()
	defer c.docs.mu.Unlock()

	d, ok := c.docs.docs[documentID]
	if !ok || d.IsDeleted || d.TenantId != tenantID {
		return nil
	}

	c.sections.mu.Lock()
	var total, done int64
	for _, s := range c.sections.sections {
		if s.IsDeleted || s.DocumentId != documentID {
			continue
		}
		total++
		if containsString(constant.SectionDoneStatuses, s.Status) {
			done++
		}
	}
	c.sections.mu.Unlock()

	d.CompletionPercentage = coordinator.CompletionPercentage(done, total)
	if d.Status == constant.DocumentStatusDraft && d.CompletionPercentage > 0 {
		d.Status = constant.DocumentStatusInProgress
	}
	return nil
}

func (c *Coordinator) RecomputeCompletionTx(tx *gorm.DB, documentID, tenantID uuid.UUID) error {
	return c.RecomputeCompletion(context.Background(), documentID, tenantID)
}
