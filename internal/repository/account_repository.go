package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/stemsi/examsession/internal/model"
)

// AccountRepository stores admin and student accounts in memory.
// Usernames are unique case-insensitively across both roles.
type AccountRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*model.Account
	byUsername map[string]*model.Account
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:       make(map[uuid.UUID]*model.Account),
		byUsername: make(map[string]*model.Account),
	}
}

func usernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Create inserts a new account.
func (r *AccountRepository) Create(_ context.Context, a *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := usernameKey(a.Username)
	if _, exists := r.byUsername[key]; exists {
		return ErrConflict
	}
	if _, exists := r.byID[a.ID]; exists {
		return ErrConflict
	}
	r.byID[a.ID] = a
	r.byUsername[key] = a
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// GetByUsername retrieves an account by username.
func (r *AccountRepository) GetByUsername(_ context.Context, username string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byUsername[usernameKey(username)]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// ListByRole returns the accounts with the given role ordered by username.
func (r *AccountRepository) ListByRole(_ context.Context, role model.Role) []*model.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Account
	for _, a := range r.byID {
		if a.Role == role {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
