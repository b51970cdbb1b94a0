package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/repository"
	"github.com/stemsi/examsession/internal/session"
)

// ExamService handles exam authoring and result review for admins.
type ExamService struct {
	exams    *repository.ExamRepository
	pools    *repository.QuestionPoolRepository
	sessions *repository.ExamSessionRepository
	events   EventPublisher
	log      zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	exams *repository.ExamRepository,
	pools *repository.QuestionPoolRepository,
	sessions *repository.ExamSessionRepository,
	events EventPublisher,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		exams:    exams,
		pools:    pools,
		sessions: sessions,
		events:   publisherOrNop(events),
		log:      log.With().Str("component", "exam_service").Logger(),
	}
}

// Create registers a draft exam.
func (s *ExamService) Create(ctx context.Context, creator model.Admin, req *model.CreateExamRequest) (*model.Exam, error) {
	var pool *model.QuestionPool
	if req.PoolID != nil {
		p, err := s.pools.GetByID(ctx, *req.PoolID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrPoolNotFound
			}
			return nil, fmt.Errorf("get pool: %w", err)
		}
		pool = p
	}

	exam, err := model.NewExam(req.Name, time.Duration(req.DurationSeconds)*time.Second, creator, pool)
	if err != nil {
		return nil, err
	}
	if err := exam.SetRandomQuestionCount(req.RandomQuestionCount); err != nil {
		return nil, err
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Str("name", exam.Name).
		Dur("duration", exam.Duration).
		Msg("Exam created")
	return exam, nil
}

// Get retrieves an exam.
func (s *ExamService) Get(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

// List returns every exam.
func (s *ExamService) List(ctx context.Context) []*model.Exam {
	return s.exams.List(ctx)
}

// ListPublished returns the exams students may start.
func (s *ExamService) ListPublished(ctx context.Context) []*model.Exam {
	return s.exams.ListPublished(ctx)
}

// AddQuestion adds an explicit question to the exam, either by referencing a
// question of the exam's pool or by authoring one inline.
func (s *ExamService) AddQuestion(ctx context.Context, examID uuid.UUID, req *model.AddExamQuestionRequest) (model.Question, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}

	var q model.Question
	switch {
	case req.PoolQuestionID != "":
		if exam.Pool == nil {
			return nil, ErrExamHasNoPool
		}
		found, ok := exam.Pool.QuestionByID(req.PoolQuestionID)
		if !ok {
			return nil, ErrQuestionNotFound
		}
		q = found
	case req.Question != nil:
		if q, err = req.Question.Build(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: no question given", model.ErrInvalidQuestion)
	}

	exam.AddQuestion(q)
	s.log.Debug().Str("exam_id", examID.String()).Str("question_id", q.ID()).Msg("Question added to exam")
	return q, nil
}

// SetRandomQuestionCount changes how many pool questions each session draws.
func (s *ExamService) SetRandomQuestionCount(ctx context.Context, examID uuid.UUID, n int) (*model.Exam, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	if err := exam.SetRandomQuestionCount(n); err != nil {
		return nil, err
	}
	return exam, nil
}

// Publish makes the exam available to students. An exam that would resolve
// to no questions stays unpublished and model.ErrNoQuestions is returned.
func (s *ExamService) Publish(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	if err := exam.Publish(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Exam not published")
		return nil, err
	}
	s.log.Info().
		Str("exam_id", examID.String()).
		Int("questions", exam.FeasibleQuestionCount()).
		Msg("Exam published")
	return exam, nil
}

// Results returns the results of every submitted session of the exam, oldest first.
func (s *ExamService) Results(ctx context.Context, examID uuid.UUID) ([]*model.ExamResult, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	results := s.sessions.ResultsByExam(ctx, exam)
	model.SortResults(results)
	return results, nil
}

// Summary aggregates the scores of the exam's results.
func (s *ExamService) Summary(ctx context.Context, examID uuid.UUID) (model.Summary, error) {
	results, err := s.Results(ctx, examID)
	if err != nil {
		return model.Summary{}, err
	}
	return model.Summarize(results), nil
}

func (s *ExamService) getResult(ctx context.Context, resultID uuid.UUID) (*model.ExamResult, error) {
	result, _, err := s.sessions.GetResult(ctx, resultID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	return result, nil
}

// SetComments replaces the comments on a result.
func (s *ExamService) SetComments(ctx context.Context, resultID uuid.UUID, comments string) (*model.ExamResult, error) {
	result, err := s.getResult(ctx, resultID)
	if err != nil {
		return nil, err
	}
	result.AddComments(comments)
	return result, nil
}

// PublishResult releases a result to its student. Publishing twice is a no-op.
func (s *ExamService) PublishResult(ctx context.Context, resultID uuid.UUID) (*model.ExamResult, error) {
	result, err := s.getResult(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if !result.Publish() {
		return result, nil
	}

	score, total := result.AdjustedScore(), result.TotalMarks
	s.events.Publish(model.SessionEvent{
		Type:       model.EventResultPublished,
		SessionID:  result.SessionID,
		ExamID:     result.ExamID,
		StudentID:  result.Student.ID,
		Score:      &score,
		TotalMarks: &total,
		At:         time.Now(),
	})
	s.log.Info().Str("result_id", resultID.String()).Msg("Result published")
	return result, nil
}

func answered(sess *session.ExamSession, questionID string) bool {
	for _, a := range sess.Answers() {
		if a.QuestionID == questionID {
			return true
		}
	}
	return false
}

// GradeAnswer records a manual grade for an essay answer of the result's session.
func (s *ExamService) GradeAnswer(ctx context.Context, resultID uuid.UUID, questionID string, marks int) (*model.ExamResult, error) {
	result, sess, err := s.sessions.GetResult(ctx, resultID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}

	q, ok := sess.QuestionByID(questionID)
	if !ok {
		return nil, ErrQuestionNotFound
	}
	grader, ok := q.(model.ManualGrader)
	if !ok {
		return nil, ErrNotManuallyGraded
	}
	if !answered(sess, questionID) {
		return nil, ErrQuestionNotAnswered
	}
	if err := result.RecordManualGrade(grader, marks); err != nil {
		return nil, err
	}
	return result, nil
}
