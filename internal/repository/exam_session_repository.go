package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/session"
)

type examStudentKey struct {
	examID    uuid.UUID
	studentID uuid.UUID
}

// ExamSessionRepository tracks live sessions and the results they produced.
type ExamSessionRepository struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*session.ExamSession
	byStudent map[examStudentKey]*session.ExamSession
	results   map[uuid.UUID]*session.ExamSession
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository() *ExamSessionRepository {
	return &ExamSessionRepository{
		sessions:  make(map[uuid.UUID]*session.ExamSession),
		byStudent: make(map[examStudentKey]*session.ExamSession),
		results:   make(map[uuid.UUID]*session.ExamSession),
	}
}

// Create registers s. A student has at most one session per exam; a second
// one fails with ErrConflict.
func (r *ExamSessionRepository) Create(_ context.Context, s *session.ExamSession) error {
	key := examStudentKey{examID: s.Exam.ID, studentID: s.Student.ID}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byStudent[key]; exists {
		return ErrConflict
	}
	r.sessions[s.ID] = s
	r.byStudent[key] = s
	return nil
}

// GetByID retrieves a session by ID.
func (r *ExamSessionRepository) GetByID(_ context.Context, id uuid.UUID) (*session.ExamSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// GetByExamAndStudent retrieves the session of a student for an exam.
func (r *ExamSessionRepository) GetByExamAndStudent(_ context.Context, examID, studentID uuid.UUID) (*session.ExamSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byStudent[examStudentKey{examID: examID, studentID: studentID}]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// IndexResult makes a submitted session's result addressable by result ID.
func (r *ExamSessionRepository) IndexResult(_ context.Context, s *session.ExamSession, result *model.ExamResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result.ID] = s
}

// GetResult retrieves a result and the session that produced it.
func (r *ExamSessionRepository) GetResult(_ context.Context, resultID uuid.UUID) (*model.ExamResult, *session.ExamSession, error) {
	r.mu.RLock()
	s, ok := r.results[resultID]
	r.mu.RUnlock()
	if !ok {
		return nil, nil, ErrNotFound
	}
	res := s.Result()
	if res == nil {
		return nil, nil, ErrNotFound
	}
	return res, s, nil
}

// ResultsByExam returns the results of every submitted session of the exam,
// in the exam's session record order.
func (r *ExamSessionRepository) ResultsByExam(ctx context.Context, exam *model.Exam) []*model.ExamResult {
	var out []*model.ExamResult
	for _, id := range exam.SessionRecords() {
		s, err := r.GetByID(ctx, id)
		if err != nil {
			continue
		}
		if res := s.Result(); res != nil {
			out = append(out, res)
		}
	}
	return out
}
