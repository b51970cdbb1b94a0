package model

import "github.com/google/uuid"

// Admin is the identity of an exam author. It is only used as the creator
// reference of pools and exams.
type Admin struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}
