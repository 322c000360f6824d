package coordinator

import (
	"context"
	"database/sql"
	"errors"

	"procuredoc-be/internal/constant"
	"procuredoc-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormCoordinator struct {
	db *gorm.DB
}

func NewGormCoordinator(db *gorm.DB) Coordinator {
	return &GormCoordinator{db: db}
}

// NextOrder runs at serializable isolation and takes FOR UPDATE row locks on
// the document's section rows before reading the current maximum. Serializable
// isolation covers the empty-document case, where there are no rows to lock.
// The transaction holds nothing but a read-compute cycle; it never spans a
// network call.
func (c *GormCoordinator) NextOrder(ctx context.Context, documentID uuid.UUID) (int, error) {
	tx := c.db.WithContext(ctx).Begin(&sql.TxOptions{Isolation: sql.LevelSerializable})
	if tx.Error != nil {
		return 0, tx.Error
	}

	// Soft-deleted sections keep their position: Unscoped so a deleted
	// section's slot is never handed out again (gaps are not compacted).
	var positions []int
	err := tx.Model(&model.Section{}).
		Unscoped().
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("document_id = ?", documentID).
		Pluck("position", &positions).Error
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	next := 1
	for _, p := range positions {
		if p >= next {
			next = p + 1
		}
	}

	if err := tx.Commit().Error; err != nil {
		return 0, err
	}
	return next, nil
}

func (c *GormCoordinator) RecomputeCompletion(ctx context.Context, documentID, tenantID uuid.UUID) error {
	tx := c.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := c.RecomputeCompletionTx(tx, documentID, tenantID); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func (c *GormCoordinator) RecomputeCompletionTx(tx *gorm.DB, documentID, tenantID uuid.UUID) error {
	var doc model.Document
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ?", documentID, tenantID).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Concurrently deleted or cross-tenant: nothing to recompute.
			return nil
		}
		return err
	}

	var total, done int64
	if err := tx.Model(&model.Section{}).
		Where("document_id = ?", documentID).
		Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&model.Section{}).
		Where("document_id = ? AND status IN ?", documentID, constant.SectionDoneStatuses).
		Count(&done).Error; err != nil {
		return err
	}

	pct := CompletionPercentage(done, total)
	updates := map[string]interface{}{
		"completion_percentage": pct,
	}
	// One-directional promotion. Never regresses, never auto-completes.
	if doc.Status == constant.DocumentStatusDraft && pct > 0 {
		updates["status"] = constant.DocumentStatusInProgress
	}

	return tx.Model(&model.Document{}).
		Where("id = ?", doc.Id).
		Updates(updates).Error
}
