package model

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SubmitReason records what triggered the submission of a session.
type SubmitReason string

const (
	SubmitReasonManual  SubmitReason = "manual"
	SubmitReasonTimeout SubmitReason = "timeout"
)

// ExamResult is the scoring snapshot produced exactly once per session.
// Score and TotalMarks never change; comments, the publish flag and the
// manual grade ledger may.
type ExamResult struct {
	ID         uuid.UUID
	SessionID  uuid.UUID
	ExamID     uuid.UUID
	Student    Student
	Score      int
	TotalMarks int
	Reason     SubmitReason
	CreatedAt  time.Time

	mu           sync.RWMutex
	comments     string
	published    bool
	manualGrades map[string]int
}

// NewExamResult builds a result for a freshly submitted session.
func NewExamResult(sessionID, examID uuid.UUID, student Student, score, totalMarks int, reason SubmitReason) *ExamResult {
	return &ExamResult{
		ID:           uuid.New(),
		SessionID:    sessionID,
		ExamID:       examID,
		Student:      student,
		Score:        score,
		TotalMarks:   totalMarks,
		Reason:       reason,
		CreatedAt:    time.Now(),
		manualGrades: make(map[string]int),
	}
}

// AddComments replaces the result comments.
func (r *ExamResult) AddComments(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = text
}

// Comments returns the current comments.
func (r *ExamResult) Comments() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.comments
}

// Publish marks the result visible to the student. It reports whether this
// call changed the flag.
func (r *ExamResult) Publish() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.published {
		return false
	}
	r.published = true
	return true
}

// Published reports whether the result may be shown to the student.
func (r *ExamResult) Published() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.published
}

// RecordManualGrade stores an admin grade for an essay question. Invalid
// grades leave the ledger untouched. Re-grading a question overwrites.
func (r *ExamResult) RecordManualGrade(q ManualGrader, awarded int) error {
	marks, err := q.ManualGrade(awarded)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manualGrades[q.ID()] = marks
	return nil
}

// ManualGrades returns a copy of the grade ledger.
func (r *ExamResult) ManualGrades() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int, len(r.manualGrades))
	for k, v := range r.manualGrades {
		out[k] = v
	}
	return out
}

// AdjustedScore is the automatic score plus manual essay grades, capped at
// TotalMarks.
func (r *ExamResult) AdjustedScore() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := r.Score
	for _, v := range r.manualGrades {
		total += v
	}
	return min(total, r.TotalMarks)
}

// ResultView is the JSON representation of a result.
type ResultView struct {
	ID            uuid.UUID      `json:"id"`
	SessionID     uuid.UUID      `json:"session_id"`
	ExamID        uuid.UUID      `json:"exam_id"`
	Student       Student        `json:"student"`
	Score         int            `json:"score"`
	AdjustedScore int            `json:"adjusted_score"`
	TotalMarks    int            `json:"total_marks"`
	Reason        SubmitReason   `json:"reason"`
	Comments      string         `json:"comments,omitempty"`
	Published     bool           `json:"published"`
	ManualGrades  map[string]int `json:"manual_grades,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// View renders the result.
func (r *ExamResult) View() ResultView {
	return ResultView{
		ID:            r.ID,
		SessionID:     r.SessionID,
		ExamID:        r.ExamID,
		Student:       r.Student,
		Score:         r.Score,
		AdjustedScore: r.AdjustedScore(),
		TotalMarks:    r.TotalMarks,
		Reason:        r.Reason,
		Comments:      r.Comments(),
		Published:     r.Published(),
		ManualGrades:  r.ManualGrades(),
		CreatedAt:     r.CreatedAt,
	}
}

// Summary aggregates scores over a set of results.
type Summary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Highest int     `json:"highest"`
	Lowest  int     `json:"lowest"`
}

// Summarize computes the summary of results. Nil entries are ignored.
func Summarize(results []*ExamResult) Summary {
	var s Summary
	total := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		if s.Count == 0 || r.Score > s.Highest {
			s.Highest = r.Score
		}
		if s.Count == 0 || r.Score < s.Lowest {
			s.Lowest = r.Score
		}
		total += r.Score
		s.Count++
	}
	if s.Count > 0 {
		s.Average = float64(total) / float64(s.Count)
	}
	return s
}

// SortResults orders results by creation time, oldest first.
func SortResults(results []*ExamResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
}

// CommentsRequest is the payload for replacing result comments.
type CommentsRequest struct {
	Comments string `json:"comments" binding:"max=5000"`
}

// ManualGradeRequest is the payload for grading an essay answer.
type ManualGradeRequest struct {
	QuestionID string `json:"question_id" binding:"required,max=64"`
	Marks      *int   `json:"marks" binding:"required"`
}
