package memory

import (
	"context"
	"sync"
	"time"

	"procuredoc-be/internal/entity"
	"procuredoc-be/internal/repository/contract"
	"procuredoc-be/internal/repository/specification"

	"github.com/google/uuid"
)

// SectionRepository is a concurrency-safe in-memory implementation of the
// section contract. It enforces the same (document, type) and
// (document, position) uniqueness the Postgres indexes do, so race-handling
// code paths behave identically against it.
type SectionRepository struct {
	mu       sync.Mutex
	sections map[uuid.UUID]*entity.Section
}

func NewSectionRepository() *SectionRepository {
	return &SectionRepository{
		sections: make(map[uuid.UUID]*entity.Section),
	}
}

func (r *SectionRepository) Create(ctx context.Context, section *entity.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sections {
		if existing.DocumentId != section.DocumentId {
			continue
		}
		if !existing.IsDeleted && existing.Type == section.Type {
			return contract.ErrDuplicate
		}
		// Positions stay unique even across deleted rows: slots are never
		// reused, matching the full-table index.
		if existing.Position == section.Position {
			return contract.ErrDuplicate
		}
	}
	if section.Id == uuid.Nil {
		section.Id = uuid.New()
	}
	if section.CreatedAt.IsZero() {
		section.CreatedAt = time.Now()
	}
	cp := *section
	r.sections[section.Id] = &cp
	return nil
}

func (r *SectionRepository) Update(ctx context.Context, section *entity.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	section.UpdatedAt = &now
	cp := *section
	r.sections[section.Id] = &cp
	return nil
}

func (r *SectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sections[id]; ok {
		now := time.Now()
		s.DeletedAt = &now
		s.IsDeleted = true
	}
	return nil
}

func (r *SectionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Section, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sections {
		if !s.IsDeleted && sectionMatches(s, specs) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *SectionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Section, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Section
	for _, s := range r.sections {
		if !s.IsDeleted && sectionMatches(s, specs) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sortSections(out, specs)
	return out, nil
}

func (r *SectionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}
