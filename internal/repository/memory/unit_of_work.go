package memory

import (
	"context"

	"procuredoc-be/internal/repository/contract"
	"procuredoc-be/internal/repository/unitofwork"

	"gorm.io/gorm"
)

// RepositoryFactory hands out units of work over one shared set of in-memory
// repositories. Begin/Commit/Rollback are no-ops: the repositories apply every
// write immediately, which is the visibility model the unit tests assert on.
type RepositoryFactory struct {
	Documents *DocumentRepository
	Sections  *SectionRepository
	Jobs      *GenerationJobRepository
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{
		Documents: NewDocumentRepository(),
		Sections:  NewSectionRepository(),
		Jobs:      NewGenerationJobRepository(),
	}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{factory: f}
}

type unitOfWork struct {
	factory *RepositoryFactory
}

func (u *unitOfWork) Begin(ctx context.Context) error { return nil }
func (u *unitOfWork) Commit() error                   { return nil }
func (u *unitOfWork) Rollback() error                 { return nil }
func (u *unitOfWork) Tx() *gorm.DB                    { return nil }

func (u *unitOfWork) DocumentRepository() contract.DocumentRepository {
	return u.factory.Documents
}

func (u *unitOfWork) SectionRepository() contract.SectionRepository {
	return u.factory.Sections
}

func (u *unitOfWork) GenerationJobRepository() contract.GenerationJobRepository {
	return u.factory.Jobs
}
