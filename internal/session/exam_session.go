// Package session implements the exam session state machine: question
// traversal, answer capture, timeout-driven auto-submission and scoring.
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/random"
	"github.com/stemsi/examsession/internal/timer"
)

// Session errors. None of them change session state.
var (
	ErrAlreadySubmitted     = errors.New("exam session already submitted")
	ErrQuestionNotInSession = errors.New("question is not part of this exam session")
)

// State is the lifecycle state of a session.
type State string

const (
	StateCreated    State = "CREATED"
	StateInProgress State = "IN_PROGRESS"
	StateSubmitted  State = "SUBMITTED"
)

const (
	stateCreated int32 = iota
	stateInProgress
	stateSubmitted
)

// SubmitHook is called once, after the result has been produced and before
// Done is closed. Hooks must not wait on Done.
type SubmitHook func(s *ExamSession, result *model.ExamResult)

// Option configures an ExamSession.
type Option func(*ExamSession)

// WithLogger sets the session logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *ExamSession) { s.log = log }
}

// WithSubmitHook registers a hook run after submission.
func WithSubmitHook(h SubmitHook) Option {
	return func(s *ExamSession) { s.hooks = append(s.hooks, h) }
}

// WithClock overrides the clock used for start and end timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ExamSession) { s.now = now }
}

// Answer is one recorded answer.
type Answer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// ExamSession is one student's attempt at one exam.
type ExamSession struct {
	ID      uuid.UUID
	Student model.Student
	Exam    *model.Exam

	questions []model.Question
	members   map[model.Question]struct{}

	log   zerolog.Logger
	now   func() time.Time
	hooks []SubmitHook
	timer *timer.Timer

	state atomic.Int32
	done  chan struct{}

	mu          sync.Mutex
	cursor      int
	answers     map[model.Question]string
	answerOrder []model.Question
	startedAt   time.Time
	endedAt     time.Time
	result      *model.ExamResult
}

// New resolves the exam's questions into a private snapshot and returns a
// session in the Created state. It fails with model.ErrNoQuestions when the
// exam resolves to nothing.
func New(student model.Student, exam *model.Exam, rnd random.Source, opts ...Option) (*ExamSession, error) {
	questions := exam.ResolveQuestions(rnd)
	if len(questions) == 0 {
		return nil, model.ErrNoQuestions
	}

	s := &ExamSession{
		ID:        uuid.New(),
		Student:   student,
		Exam:      exam,
		questions: questions,
		members:   make(map[model.Question]struct{}, len(questions)),
		log:       zerolog.Nop(),
		now:       time.Now,
		done:      make(chan struct{}),
		answers:   make(map[model.Question]string),
	}
	for _, q := range questions {
		s.members[q] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}

	s.log = s.log.With().
		Str("session_id", s.ID.String()).
		Str("exam_id", exam.ID.String()).
		Str("student", student.Username).
		Logger()
	s.timer = timer.New(exam.Duration, s.onTimeout)

	return s, nil
}

// Start moves the session to InProgress and starts the countdown.
// Starting twice is a no-op; starting a submitted session fails.
func (s *ExamSession) Start() error {
	if !s.state.CompareAndSwap(stateCreated, stateInProgress) {
		if s.state.Load() == stateSubmitted {
			return ErrAlreadySubmitted
		}
		return nil
	}

	s.mu.Lock()
	s.cursor = 0
	s.startedAt = s.now()
	s.mu.Unlock()

	s.timer.Start()
	s.log.Info().
		Int("questions", len(s.questions)).
		Dur("duration", s.Exam.Duration).
		Msg("Exam session started")
	return nil
}

// CurrentQuestion returns the question at the cursor, or false past the end.
func (s *ExamSession) CurrentQuestion() (model.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor < len(s.questions) {
		return s.questions[s.cursor], true
	}
	return nil, false
}

// Position returns the cursor index.
func (s *ExamSession) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Advance moves the cursor to the next question. Moving past the end is harmless.
func (s *ExamSession) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor <= len(s.questions) {
		s.cursor++
	}
}

// SubmitAnswer records answer for q, replacing any earlier answer.
func (s *ExamSession) SubmitAnswer(q model.Question, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Load() == stateSubmitted {
		return ErrAlreadySubmitted
	}
	if _, ok := s.members[q]; !ok {
		return ErrQuestionNotInSession
	}
	if _, seen := s.answers[q]; !seen {
		s.answerOrder = append(s.answerOrder, q)
	}
	s.answers[q] = answer
	return nil
}

// SubmitAnswerByID resolves questionID against the snapshot and records answer.
func (s *ExamSession) SubmitAnswerByID(questionID, answer string) (model.Question, error) {
	q, ok := s.questionByID(questionID)
	if !ok {
		return nil, ErrQuestionNotInSession
	}
	return q, s.SubmitAnswer(q, answer)
}

func (s *ExamSession) questionByID(id string) (model.Question, bool) {
	for _, q := range s.questions {
		if q.ID() == id {
			return q, true
		}
	}
	return nil, false
}

// Submit finalizes the session and returns its result. Only the first call
// scores; every other call, concurrent or later, returns the same result.
func (s *ExamSession) Submit() *model.ExamResult {
	return s.submit(model.SubmitReasonManual)
}

func (s *ExamSession) onTimeout() {
	if s.state.Load() == stateSubmitted {
		return
	}
	s.log.Info().Msg("Exam time is up, submitting automatically")
	s.submit(model.SubmitReasonTimeout)
}

func (s *ExamSession) submit(reason model.SubmitReason) *model.ExamResult {
	for {
		st := s.state.Load()
		if st == stateSubmitted {
			<-s.done
			return s.result
		}
		if s.state.CompareAndSwap(st, stateSubmitted) {
			break
		}
	}

	s.timer.Stop()

	s.mu.Lock()
	s.endedAt = s.now()
	score := s.score()
	total := 0
	for _, q := range s.questions {
		total += q.Marks()
	}
	result := model.NewExamResult(s.ID, s.Exam.ID, s.Student, score, total, reason)
	s.result = result
	s.mu.Unlock()

	s.log.Info().
		Int("score", score).
		Int("total_marks", total).
		Str("reason", string(reason)).
		Msg("Exam session submitted")

	for _, h := range s.hooks {
		h(s, result)
	}
	close(s.done)
	return result
}

// score sums automatic marks over recorded answers. Caller holds s.mu.
func (s *ExamSession) score() int {
	score := 0
	for _, q := range s.answerOrder {
		if _, essay := q.(model.ManualGrader); essay {
			s.log.Debug().Str("question_id", q.ID()).Msg("Essay answer needs manual grading")
		}
		score += q.CheckAnswer(s.answers[q])
	}
	return score
}

// Done is closed once the session has a result.
func (s *ExamSession) Done() <-chan struct{} {
	return s.done
}

// Result returns the result, or nil before submission.
func (s *ExamSession) Result() *model.ExamResult {
	select {
	case <-s.done:
		return s.result
	default:
		return nil
	}
}

// Submitted reports whether the session has been submitted.
func (s *ExamSession) Submitted() bool {
	return s.state.Load() == stateSubmitted
}

// State returns the lifecycle state.
func (s *ExamSession) State() State {
	switch s.state.Load() {
	case stateInProgress:
		return StateInProgress
	case stateSubmitted:
		return StateSubmitted
	default:
		return StateCreated
	}
}

// Questions returns a copy of the question snapshot in session order.
func (s *ExamSession) Questions() []model.Question {
	return append([]model.Question(nil), s.questions...)
}

// Answers returns the recorded answers in first-answered order.
func (s *ExamSession) Answers() []Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Answer, len(s.answerOrder))
	for i, q := range s.answerOrder {
		out[i] = Answer{QuestionID: q.ID(), Answer: s.answers[q]}
	}
	return out
}

// Remaining returns the time left on the countdown.
func (s *ExamSession) Remaining() time.Duration {
	return s.timer.Remaining()
}

// StartedAt returns the start instant, or the zero time.
func (s *ExamSession) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// EndedAt returns the submission instant, or the zero time.
func (s *ExamSession) EndedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedAt
}

// QuestionByID looks up a question of this session's snapshot.
func (s *ExamSession) QuestionByID(id string) (model.Question, bool) {
	return s.questionByID(id)
}
