package unitofwork

import (
	"context"

	"procuredoc-be/internal/repository/contract"

	"gorm.io/gorm"
)

// UnitOfWork groups repository access under an optional shared transaction.
// Repositories obtained before Begin run on the base connection; after Begin
// they run on the transaction until Commit or Rollback.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	// Tx exposes the active transaction (or the base connection when no
	// transaction is open) so transactional collaborators such as the
	// consistency coordinator can join the same boundary.
	Tx() *gorm.DB

	DocumentRepository() contract.DocumentRepository
	SectionRepository() contract.SectionRepository
	GenerationJobRepository() contract.GenerationJobRepository
}
