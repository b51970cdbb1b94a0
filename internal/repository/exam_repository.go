package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/stemsi/examsession/internal/model"
)

// ExamRepository is the shared exam registry. It is injected into every
// component that creates or looks up exams.
type ExamRepository struct {
	mu    sync.RWMutex
	exams map[uuid.UUID]*model.Exam
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository() *ExamRepository {
	return &ExamRepository{exams: make(map[uuid.UUID]*model.Exam)}
}

// Create registers an exam.
func (r *ExamRepository) Create(_ context.Context, e *model.Exam) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.exams[e.ID]; exists {
		return ErrConflict
	}
	r.exams[e.ID] = e
	return nil
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exams[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// List returns all exams, oldest first.
func (r *ExamRepository) List(_ context.Context) []*model.Exam {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Exam, 0, len(r.exams))
	for _, e := range r.exams {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ListPublished returns published exams, oldest first.
func (r *ExamRepository) ListPublished(ctx context.Context) []*model.Exam {
	var out []*model.Exam
	for _, e := range r.List(ctx) {
		if e.Published() {
			out = append(out, e)
		}
	}
	return out
}
