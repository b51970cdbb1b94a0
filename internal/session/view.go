package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/timer"
)

// View is the student-facing snapshot of a session.
type View struct {
	ID               uuid.UUID           `json:"id"`
	ExamID           uuid.UUID           `json:"exam_id"`
	ExamName         string              `json:"exam_name"`
	Student          model.Student       `json:"student"`
	State            State               `json:"state"`
	Position         int                 `json:"position"`
	QuestionCount    int                 `json:"question_count"`
	CurrentQuestion  *model.QuestionView `json:"current_question,omitempty"`
	AnsweredCount    int                 `json:"answered_count"`
	Answers          []Answer            `json:"answers"`
	RemainingSeconds float64             `json:"remaining_seconds"`
	Remaining        string              `json:"remaining"`
	StartedAt        *time.Time          `json:"started_at,omitempty"`
	EndedAt          *time.Time          `json:"ended_at,omitempty"`
	ResultID         *uuid.UUID          `json:"result_id,omitempty"`
}

// View renders the session for its student.
func (s *ExamSession) View() View {
	answers := s.Answers()
	remaining := s.Remaining()
	v := View{
		ID:               s.ID,
		ExamID:           s.Exam.ID,
		ExamName:         s.Exam.Name,
		Student:          s.Student,
		State:            s.State(),
		Position:         s.Position(),
		QuestionCount:    len(s.questions),
		AnsweredCount:    len(answers),
		Answers:          answers,
		RemainingSeconds: remaining.Seconds(),
		Remaining:        timer.FormatRemaining(remaining),
	}
	if q, ok := s.CurrentQuestion(); ok {
		qv := model.ViewQuestion(q)
		v.CurrentQuestion = &qv
	}
	if t := s.StartedAt(); !t.IsZero() {
		v.StartedAt = &t
	}
	if t := s.EndedAt(); !t.IsZero() {
		v.EndedAt = &t
	}
	if r := s.Result(); r != nil {
		id := r.ID
		v.ResultID = &id
	}
	return v
}

// AnswerRequest is the payload for recording one answer.
type AnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,max=64"`
	Answer     string `json:"answer" binding:"max=10000"`
}
