package contract

import (
	"context"

	"procuredoc-be/internal/entity"
	"procuredoc-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SectionRepository interface {
	// Create returns ErrDuplicate when the (document, type) uniqueness
	// constraint rejects the insert.
	Create(ctx context.Context, section *entity.Section) error
	Update(ctx context.Context, section *entity.Section) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Section, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Section, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
