package memory

import (
	"context"
	"sync"
	"time"

	"procuredoc-be/internal/entity"
	"procuredoc-be/internal/repository/specification"

	"github.com/google/uuid"
)

type GenerationJobRepository struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entity.GenerationJob
}

func NewGenerationJobRepository() *GenerationJobRepository {
	return &GenerationJobRepository{
		jobs: make(map[uuid.UUID]*entity.GenerationJob),
	}
}

func (r *GenerationJobRepository) Create(ctx context.Context, job *entity.GenerationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job.Id == uuid.Nil {
		job.Id = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	cp := *job
	r.jobs[job.Id] = &cp
	return nil
}

func (r *GenerationJobRepository) Update(ctx context.Context, job *entity.GenerationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *job
	r.jobs[job.Id] = &cp
	return nil
}

func (r *GenerationJobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.jobs, id)
	return nil
}

func (r *GenerationJobRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, j := range r.jobs {
		if jobMatches(j, specs) {
			cp := *j
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *GenerationJobRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.GenerationJob
	for _, j := range r.jobs {
		if jobMatches(j, specs) {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *GenerationJobRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}
