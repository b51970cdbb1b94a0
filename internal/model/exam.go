package model

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/examsession/internal/random"
)

// Exam errors.
var (
	ErrNoQuestions         = errors.New("exam has no questions")
	ErrInvalidRandomCount  = errors.New("random question count must not be negative")
	ErrInvalidExamDuration = errors.New("exam duration must be positive")
)

// ExamStatus enumerates the publish state of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
)

// Exam is a question composition that students take in timed sessions.
type Exam struct {
	ID        uuid.UUID
	Name      string
	Duration  time.Duration
	Creator   Admin
	Pool      *QuestionPool
	CreatedAt time.Time

	mu                  sync.RWMutex
	questions           []Question
	randomQuestionCount int
	published           bool
	sessions            []uuid.UUID
}

// NewExam creates a draft exam. pool may be nil.
func NewExam(name string, duration time.Duration, creator Admin, pool *QuestionPool) (*Exam, error) {
	if duration <= 0 {
		return nil, ErrInvalidExamDuration
	}
	return &Exam{
		ID:        uuid.New(),
		Name:      name,
		Duration:  duration,
		Creator:   creator,
		Pool:      pool,
		CreatedAt: time.Now(),
	}, nil
}

// AddQuestion appends q to the explicit question list. Duplicates are allowed.
func (e *Exam) AddQuestion(q Question) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.questions = append(e.questions, q)
}

// SetRandomQuestionCount sets how many questions to draw from the pool.
func (e *Exam) SetRandomQuestionCount(n int) error {
	if n < 0 {
		return ErrInvalidRandomCount
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.randomQuestionCount = n
	return nil
}

// RandomQuestionCount returns the configured pool draw size.
func (e *Exam) RandomQuestionCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.randomQuestionCount
}

// Questions returns a copy of the explicit question list.
func (e *Exam) Questions() []Question {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Question(nil), e.questions...)
}

// Published reports whether the exam has been published.
func (e *Exam) Published() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.published
}

// FeasibleQuestionCount is the size every resolved question set will have.
func (e *Exam) FeasibleQuestionCount() int {
	explicit := e.Questions()
	n := len(explicit)
	if count := e.RandomQuestionCount(); e.Pool != nil && count > 0 {
		n += min(count, len(e.Pool.available(explicit)))
	}
	return n
}

// Publish makes the exam available to students. It fails with ErrNoQuestions,
// leaving the exam unchanged, when no question would be resolved. Publishing
// twice is a no-op.
func (e *Exam) Publish() error {
	if e.FeasibleQuestionCount() == 0 {
		return ErrNoQuestions
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.published = true
	return nil
}

// ResolveQuestions returns the explicit questions plus the random pool draw,
// shuffled as a whole. Each call yields a fresh slice.
func (e *Exam) ResolveQuestions(rnd random.Source) []Question {
	resolved := e.Questions()
	if count := e.RandomQuestionCount(); e.Pool != nil && count > 0 {
		resolved = append(resolved, e.Pool.ResolveRandom(count, resolved, rnd)...)
	}
	rnd.Shuffle(len(resolved), func(i, j int) { resolved[i], resolved[j] = resolved[j], resolved[i] })
	return resolved
}

// AddSessionRecord tracks a session created for this exam.
func (e *Exam) AddSessionRecord(sessionID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions = append(e.sessions, sessionID)
}

// SessionRecords returns a copy of the tracked session IDs in creation order.
func (e *Exam) SessionRecords() []uuid.UUID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]uuid.UUID(nil), e.sessions...)
}

// Status returns the exam status.
func (e *Exam) Status() ExamStatus {
	if e.Published() {
		return ExamStatusPublished
	}
	return ExamStatusDraft
}

// ExamView is the JSON representation of an exam.
type ExamView struct {
	ID                  uuid.UUID        `json:"id"`
	Name                string           `json:"name"`
	DurationSeconds     int64            `json:"duration_seconds"`
	Creator             Admin            `json:"creator"`
	PoolID              *uuid.UUID       `json:"pool_id,omitempty"`
	RandomQuestionCount int              `json:"random_question_count"`
	QuestionCount       int              `json:"question_count"`
	Status              ExamStatus       `json:"status"`
	SessionCount        int              `json:"session_count"`
	CreatedAt           time.Time        `json:"created_at"`
	Questions           []QuestionDetail `json:"questions,omitempty"`
}

// View renders the exam. Explicit questions are included when withQuestions is set.
func (e *Exam) View(withQuestions bool) ExamView {
	v := ExamView{
		ID:                  e.ID,
		Name:                e.Name,
		DurationSeconds:     int64(e.Duration / time.Second),
		Creator:             e.Creator,
		RandomQuestionCount: e.RandomQuestionCount(),
		QuestionCount:       e.FeasibleQuestionCount(),
		Status:              e.Status(),
		SessionCount:        len(e.SessionRecords()),
		CreatedAt:           e.CreatedAt,
	}
	if e.Pool != nil {
		id := e.Pool.ID
		v.PoolID = &id
	}
	if withQuestions {
		for _, q := range e.Questions() {
			v.Questions = append(v.Questions, DetailQuestion(q))
		}
	}
	return v
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Name                string     `json:"name" binding:"required,notblank,min=3,max=255"`
	DurationSeconds     int        `json:"duration_seconds" binding:"required,min=1,max=28800"`
	PoolID              *uuid.UUID `json:"pool_id" binding:"omitempty"`
	RandomQuestionCount int        `json:"random_question_count" binding:"min=0,max=1000"`
}

// AddExamQuestionRequest adds either a pool question (by ID) or an inline one.
type AddExamQuestionRequest struct {
	PoolQuestionID string              `json:"pool_question_id" binding:"required_without=Question,omitempty,max=64"`
	Question       *AddQuestionRequest `json:"question" binding:"required_without=PoolQuestionID,omitempty"`
}

// SetRandomCountRequest is the payload for changing the pool draw size.
type SetRandomCountRequest struct {
	Count *int `json:"count" binding:"required,min=0,max=1000"`
}
