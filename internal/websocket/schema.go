package websocket

import (
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/session"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer  Action = "answer"
	ActionAdvance Action = "advance"
	ActionSubmit  Action = "submit"
	ActionPing    Action = "ping"
)

// Request is the union of all client messages. Only the fields relevant to
// Action are read.
type Request struct {
	Action Action `json:"action"`
	QID    string `json:"q_id,omitempty"`
	Answer string `json:"ans,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSuccess  Event = "success"
	EventQuestion Event = "question"
	EventGraded   Event = "graded"
	EventPong     Event = "pong"
)

type SuccessResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
	QID    string `json:"q_id,omitempty"`
}

// QuestionResponse carries the session state after a cursor move or on connect.
type QuestionResponse struct {
	Event   Event        `json:"event"`
	Session session.View `json:"session"`
}

type GradedResponse struct {
	Event      Event              `json:"event"`
	Status     string             `json:"status"`
	Reason     model.SubmitReason `json:"reason"`
	Score      int                `json:"score"`
	TotalMarks int                `json:"total_marks"`
	ResultID   string             `json:"result_id"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// Graded builds the graded event for a result.
func Graded(r *model.ExamResult) GradedResponse {
	return GradedResponse{
		Event:      EventGraded,
		Status:     "completed",
		Reason:     r.Reason,
		Score:      r.Score,
		TotalMarks: r.TotalMarks,
		ResultID:   r.ID.String(),
	}
}
