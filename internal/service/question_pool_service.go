package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/repository"
)

// QuestionPoolService handles question pool authoring.
type QuestionPoolService struct {
	pools *repository.QuestionPoolRepository
	log   zerolog.Logger
}

// NewQuestionPoolService creates a new QuestionPoolService.
func NewQuestionPoolService(pools *repository.QuestionPoolRepository, log zerolog.Logger) *QuestionPoolService {
	return &QuestionPoolService{
		pools: pools,
		log:   log.With().Str("component", "question_pool_service").Logger(),
	}
}

// Create registers an empty pool owned by creator.
func (s *QuestionPoolService) Create(ctx context.Context, creator model.Admin, req *model.CreatePoolRequest) (*model.QuestionPool, error) {
	pool := model.NewQuestionPool(req.Name, creator)
	if err := s.pools.Create(ctx, pool); err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	s.log.Info().Str("pool_id", pool.ID.String()).Str("name", pool.Name).Msg("Question pool created")
	return pool, nil
}

// Get retrieves a pool.
func (s *QuestionPoolService) Get(ctx context.Context, id uuid.UUID) (*model.QuestionPool, error) {
	pool, err := s.pools.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("get pool: %w", err)
	}
	return pool, nil
}

// List returns every pool.
func (s *QuestionPoolService) List(ctx context.Context) []*model.QuestionPool {
	return s.pools.List(ctx)
}

// AddQuestion builds a question from req and adds it to the pool.
func (s *QuestionPoolService) AddQuestion(ctx context.Context, poolID uuid.UUID, req *model.AddQuestionRequest) (model.Question, error) {
	pool, err := s.Get(ctx, poolID)
	if err != nil {
		return nil, err
	}
	q, err := req.Build()
	if err != nil {
		return nil, err
	}
	if err := pool.AddQuestion(q); err != nil {
		return nil, err
	}
	s.log.Debug().Str("pool_id", poolID.String()).Str("question_id", q.ID()).Msg("Question added to pool")
	return q, nil
}
