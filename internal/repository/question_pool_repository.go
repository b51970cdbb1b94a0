package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/stemsi/examsession/internal/model"
)

// QuestionPoolRepository stores question pools in memory.
type QuestionPoolRepository struct {
	mu    sync.RWMutex
	pools map[uuid.UUID]*model.QuestionPool
}

// NewQuestionPoolRepository creates a new QuestionPoolRepository.
func NewQuestionPoolRepository() *QuestionPoolRepository {
	return &QuestionPoolRepository{pools: make(map[uuid.UUID]*model.QuestionPool)}
}

// Create registers a pool.
func (r *QuestionPoolRepository) Create(_ context.Context, p *model.QuestionPool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pools[p.ID]; exists {
		return ErrConflict
	}
	r.pools[p.ID] = p
	return nil
}

// GetByID retrieves a pool by ID.
func (r *QuestionPoolRepository) GetByID(_ context.Context, id uuid.UUID) (*model.QuestionPool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// List returns all pools, oldest first.
func (r *QuestionPoolRepository) List(_ context.Context) []*model.QuestionPool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.QuestionPool, 0, len(r.pools))
	for _, p := range r.pools {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
