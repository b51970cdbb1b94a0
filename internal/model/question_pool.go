package model

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/examsession/internal/random"
)

// QuestionPool is an admin-owned collection of questions that exams can draw
// random questions from.
type QuestionPool struct {
	ID        uuid.UUID
	Name      string
	Creator   Admin
	CreatedAt time.Time

	mu        sync.RWMutex
	questions []Question
}

// NewQuestionPool creates an empty pool.
func NewQuestionPool(name string, creator Admin) *QuestionPool {
	return &QuestionPool{
		ID:        uuid.New(),
		Name:      name,
		Creator:   creator,
		CreatedAt: time.Now(),
	}
}

// AddQuestion appends q. Question IDs are unique within one pool.
func (p *QuestionPool) AddQuestion(q Question) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.questions {
		if existing.ID() == q.ID() {
			return ErrDuplicateQuestion
		}
	}
	p.questions = append(p.questions, q)
	return nil
}

// QuestionByID returns the pool question with the given ID.
func (p *QuestionPool) QuestionByID(id string) (Question, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, q := range p.questions {
		if q.ID() == id {
			return q, true
		}
	}
	return nil, false
}

// Questions returns a copy of the pool contents.
func (p *QuestionPool) Questions() []Question {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Question(nil), p.questions...)
}

// Len returns the number of questions in the pool.
func (p *QuestionPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.questions)
}

// available returns the pool questions not present in exclude, in pool order.
func (p *QuestionPool) available(exclude []Question) []Question {
	excluded := make(map[Question]struct{}, len(exclude))
	for _, q := range exclude {
		excluded[q] = struct{}{}
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Question, 0, len(p.questions))
	for _, q := range p.questions {
		if _, skip := excluded[q]; !skip {
			out = append(out, q)
		}
	}
	return out
}

// ResolveRandom returns up to count questions not in exclude, sampled
// uniformly without replacement. When fewer are available, all of them are
// returned.
func (p *QuestionPool) ResolveRandom(count int, exclude []Question, rnd random.Source) []Question {
	if count <= 0 {
		return nil
	}
	avail := p.available(exclude)
	if len(avail) <= count {
		return avail
	}
	rnd.Shuffle(len(avail), func(i, j int) { avail[i], avail[j] = avail[j], avail[i] })
	return avail[:count]
}

// PoolView is the JSON representation of a pool.
type PoolView struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Creator   Admin            `json:"creator"`
	CreatedAt time.Time        `json:"created_at"`
	Questions []QuestionDetail `json:"questions"`
}

// View renders the pool for admins.
func (p *QuestionPool) View() PoolView {
	qs := p.Questions()
	details := make([]QuestionDetail, len(qs))
	for i, q := range qs {
		details[i] = DetailQuestion(q)
	}
	return PoolView{
		ID:        p.ID,
		Name:      p.Name,
		Creator:   p.Creator,
		CreatedAt: p.CreatedAt,
		Questions: details,
	}
}

// CreatePoolRequest is the payload for creating a question pool.
type CreatePoolRequest struct {
	Name string `json:"name" binding:"required,notblank,min=3,max=255"`
}
