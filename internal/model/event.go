package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a session lifecycle event.
type EventType string

const (
	EventSessionStarted   EventType = "session.started"
	EventAnswerRecorded   EventType = "session.answer_recorded"
	EventSessionSubmitted EventType = "session.submitted"
	EventResultPublished  EventType = "result.published"
)

// SessionEvent is published to the monitoring feed.
type SessionEvent struct {
	Type       EventType    `json:"type"`
	SessionID  uuid.UUID    `json:"session_id"`
	ExamID     uuid.UUID    `json:"exam_id"`
	StudentID  uuid.UUID    `json:"student_id"`
	QuestionID string       `json:"question_id,omitempty"`
	Score      *int         `json:"score,omitempty"`
	TotalMarks *int         `json:"total_marks,omitempty"`
	Reason     SubmitReason `json:"reason,omitempty"`
	At         time.Time    `json:"at"`
}
