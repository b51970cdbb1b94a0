package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/random"
	"github.com/stemsi/examsession/internal/repository"
	"github.com/stemsi/examsession/internal/session"
)

// ExamSessionService runs student exam sessions.
type ExamSessionService struct {
	exams    *repository.ExamRepository
	sessions *repository.ExamSessionRepository
	rnd      random.Source
	events   EventPublisher
	log      zerolog.Logger
}

// NewExamSessionService creates a new ExamSessionService. rnd must be safe for
// concurrent use.
func NewExamSessionService(
	exams *repository.ExamRepository,
	sessions *repository.ExamSessionRepository,
	rnd random.Source,
	events EventPublisher,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		exams:    exams,
		sessions: sessions,
		rnd:      rnd,
		events:   publisherOrNop(events),
		log:      log.With().Str("component", "exam_session_service").Logger(),
	}
}

// StartExam creates and starts the student's session for an exam. On any
// precondition failure no session is returned.
func (s *ExamSessionService) StartExam(ctx context.Context, student model.Student, examID uuid.UUID) (*session.ExamSession, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if !exam.Published() {
		return nil, ErrExamNotPublished
	}
	if _, err := s.sessions.GetByExamAndStudent(ctx, examID, student.ID); err == nil {
		return nil, ErrAlreadyTaken
	}

	sess, err := session.New(student, exam, s.rnd,
		session.WithLogger(s.log),
		session.WithSubmitHook(s.onSubmitted),
	)
	if err != nil {
		return nil, err
	}
	// Create is the authoritative duplicate check for concurrent starts.
	if err := s.sessions.Create(ctx, sess); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyTaken
		}
		return nil, fmt.Errorf("create session: %w", err)
	}
	exam.AddSessionRecord(sess.ID)

	if err := sess.Start(); err != nil {
		return nil, err
	}

	s.events.Publish(s.event(model.EventSessionStarted, sess))
	return sess, nil
}

// onSubmitted runs once per session, after scoring.
func (s *ExamSessionService) onSubmitted(sess *session.ExamSession, result *model.ExamResult) {
	s.sessions.IndexResult(context.Background(), sess, result)

	evt := s.event(model.EventSessionSubmitted, sess)
	score, total := result.Score, result.TotalMarks
	evt.Score = &score
	evt.TotalMarks = &total
	evt.Reason = result.Reason
	s.events.Publish(evt)
}

func (s *ExamSessionService) event(t model.EventType, sess *session.ExamSession) model.SessionEvent {
	return model.SessionEvent{
		Type:      t,
		SessionID: sess.ID,
		ExamID:    sess.Exam.ID,
		StudentID: sess.Student.ID,
		At:        time.Now(),
	}
}

// Get returns a session owned by student.
func (s *ExamSessionService) Get(ctx context.Context, student model.Student, sessionID uuid.UUID) (*session.ExamSession, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.Student.ID != student.ID {
		return nil, ErrNotSessionOwner
	}
	return sess, nil
}

// Advance moves the session cursor to the next question.
func (s *ExamSessionService) Advance(ctx context.Context, student model.Student, sessionID uuid.UUID) (*session.ExamSession, error) {
	sess, err := s.Get(ctx, student, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Submitted() {
		return nil, session.ErrAlreadySubmitted
	}
	sess.Advance()
	return sess, nil
}

// Answer records an answer for one question of the session.
func (s *ExamSessionService) Answer(ctx context.Context, student model.Student, sessionID uuid.UUID, req *session.AnswerRequest) (*session.ExamSession, error) {
	sess, err := s.Get(ctx, student, sessionID)
	if err != nil {
		return nil, err
	}
	q, err := sess.SubmitAnswerByID(req.QuestionID, req.Answer)
	if err != nil {
		return nil, err
	}

	evt := s.event(model.EventAnswerRecorded, sess)
	evt.QuestionID = q.ID()
	s.events.Publish(evt)
	return sess, nil
}

// Submit finalizes the session. Repeated submissions return the same result.
func (s *ExamSessionService) Submit(ctx context.Context, student model.Student, sessionID uuid.UUID) (*model.ExamResult, error) {
	sess, err := s.Get(ctx, student, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Submit(), nil
}

// StudentResult returns the student's result for an exam once it is published.
func (s *ExamSessionService) StudentResult(ctx context.Context, student model.Student, examID uuid.UUID) (*model.ExamResult, error) {
	sess, err := s.sessions.GetByExamAndStudent(ctx, examID, student.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	result := sess.Result()
	if result == nil || !result.Published() {
		return nil, ErrResultNotPublished
	}
	return result, nil
}
