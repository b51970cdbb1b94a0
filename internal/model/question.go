package model

import (
	"errors"
	"fmt"
	"strings"
)

// Question errors.
var (
	ErrInvalidQuestion   = errors.New("invalid question")
	ErrInvalidGrade      = errors.New("awarded marks out of range")
	ErrDuplicateQuestion = errors.New("question id already present")
)

// QuestionType enumerates the question variants.
type QuestionType string

const (
	QuestionTypeObjective QuestionType = "OBJECTIVE"
	QuestionTypeEssay     QuestionType = "ESSAY"
)

// Question is a single exam question. Implementations are immutable and are
// compared by identity (pointer), never by content.
type Question interface {
	ID() string
	Text() string
	Marks() int
	Type() QuestionType
	// CheckAnswer returns the marks awarded automatically for answer.
	CheckAnswer(answer string) int
}

// ManualGrader is implemented by questions whose automatic score is always
// zero and which must be graded by an admin.
type ManualGrader interface {
	Question
	ManualGrade(awarded int) (int, error)
}

type questionBase struct {
	id    string
	text  string
	marks int
}

func newQuestionBase(id, text string, marks int) (questionBase, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return questionBase{}, fmt.Errorf("%w: id is required", ErrInvalidQuestion)
	}
	if strings.TrimSpace(text) == "" {
		return questionBase{}, fmt.Errorf("%w: text is required", ErrInvalidQuestion)
	}
	if marks <= 0 {
		return questionBase{}, fmt.Errorf("%w: marks must be positive, got %d", ErrInvalidQuestion, marks)
	}
	return questionBase{id: id, text: text, marks: marks}, nil
}

func (q *questionBase) ID() string   { return q.id }
func (q *questionBase) Text() string { return q.text }
func (q *questionBase) Marks() int   { return q.marks }

// ObjectiveQuestion has a fixed set of options and exactly one correct answer.
type ObjectiveQuestion struct {
	questionBase
	options       []string
	correctAnswer string
}

// NewObjectiveQuestion builds an objective question. The options slice is copied.
func NewObjectiveQuestion(id, text string, marks int, options []string, correctAnswer string) (*ObjectiveQuestion, error) {
	base, err := newQuestionBase(id, text, marks)
	if err != nil {
		return nil, err
	}
	correctAnswer = strings.TrimSpace(correctAnswer)
	if correctAnswer == "" {
		return nil, fmt.Errorf("%w: correct answer is required", ErrInvalidQuestion)
	}
	return &ObjectiveQuestion{
		questionBase:  base,
		options:       append([]string(nil), options...),
		correctAnswer: correctAnswer,
	}, nil
}

func (q *ObjectiveQuestion) Type() QuestionType { return QuestionTypeObjective }

// Options returns a copy of the answer options in authoring order.
func (q *ObjectiveQuestion) Options() []string {
	return append([]string(nil), q.options...)
}

// CorrectAnswer returns the stored answer key.
func (q *ObjectiveQuestion) CorrectAnswer() string { return q.correctAnswer }

// CheckAnswer awards full marks for a trimmed, case-insensitive exact match.
func (q *ObjectiveQuestion) CheckAnswer(answer string) int {
	if strings.EqualFold(strings.TrimSpace(answer), q.correctAnswer) {
		return q.marks
	}
	return 0
}

// EssayQuestion is answered in free text and graded manually.
type EssayQuestion struct {
	questionBase
}

// NewEssayQuestion builds an essay question.
func NewEssayQuestion(id, text string, marks int) (*EssayQuestion, error) {
	base, err := newQuestionBase(id, text, marks)
	if err != nil {
		return nil, err
	}
	return &EssayQuestion{questionBase: base}, nil
}

func (q *EssayQuestion) Type() QuestionType { return QuestionTypeEssay }

// CheckAnswer always returns 0; essays need manual grading.
func (q *EssayQuestion) CheckAnswer(string) int { return 0 }

// ManualGrade validates an admin-assigned grade. Out-of-range grades are
// rejected rather than clamped.
func (q *EssayQuestion) ManualGrade(awarded int) (int, error) {
	if awarded < 0 || awarded > q.marks {
		return 0, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidGrade, awarded, q.marks)
	}
	return awarded, nil
}

// QuestionView is a question as shown to students (no answer key).
type QuestionView struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Marks   int          `json:"marks"`
	Options []string     `json:"options,omitempty"`
}

// QuestionDetail is a question as shown to admins.
type QuestionDetail struct {
	QuestionView
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// ViewQuestion renders q for a student.
func ViewQuestion(q Question) QuestionView {
	v := QuestionView{ID: q.ID(), Text: q.Text(), Type: q.Type(), Marks: q.Marks()}
	if oq, ok := q.(*ObjectiveQuestion); ok {
		v.Options = oq.Options()
	}
	return v
}

// DetailQuestion renders q for an admin.
func DetailQuestion(q Question) QuestionDetail {
	d := QuestionDetail{QuestionView: ViewQuestion(q)}
	if oq, ok := q.(*ObjectiveQuestion); ok {
		d.CorrectAnswer = oq.CorrectAnswer()
	}
	return d
}

// AddQuestionRequest is the payload for authoring a question.
type AddQuestionRequest struct {
	ID            string   `json:"id" binding:"required,notblank,max=64"`
	Text          string   `json:"text" binding:"required,notblank,max=2000"`
	Type          string   `json:"type" binding:"required,oneof=OBJECTIVE ESSAY"`
	Marks         int      `json:"marks" binding:"required,min=1,max=1000"`
	Options       []string `json:"options" binding:"omitempty,dive,min=1,max=500"`
	CorrectAnswer string   `json:"correct_answer" binding:"required_if=Type OBJECTIVE,max=500"`
}

// Build constructs the question described by the request.
func (r *AddQuestionRequest) Build() (Question, error) {
	switch QuestionType(r.Type) {
	case QuestionTypeObjective:
		return NewObjectiveQuestion(r.ID, r.Text, r.Marks, r.Options, r.CorrectAnswer)
	case QuestionTypeEssay:
		return NewEssayQuestion(r.ID, r.Text, r.Marks)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, r.Type)
	}
}
