package model

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes the two kinds of accounts.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Student is the opaque identity of a student taking exams.
// Two students are the same student iff their IDs match.
type Student struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Account is a stored user with credentials.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Student returns the student identity for a student account.
func (a *Account) Student() Student {
	return Student{ID: a.ID, Username: a.Username}
}

// Admin returns the admin identity for an admin account.
func (a *Account) Admin() Admin {
	return Admin{ID: a.ID, Username: a.Username}
}

// LoginRequest is the payload for both admin and student authentication.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token   string  `json:"token"`
	Account Account `json:"account"`
}

// CreateStudentRequest is the payload for registering a student account.
type CreateStudentRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}
