package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/random"
	"github.com/stemsi/examsession/internal/session"
)

func TestExamSessionRepository_OneSessionPerStudentAndExam(t *testing.T) {
	repo := NewExamSessionRepository()
	ctx := context.Background()
	exam := newPublishableExam(t, "midterm")
	student := model.Student{ID: uuid.New(), Username: "alice"}

	first, err := session.New(student, exam, random.New(1))
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	second, err := session.New(student, exam, random.New(2))
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}

	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, second); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, err := repo.GetByExamAndStudent(ctx, exam.ID, student.ID)
	if err != nil || got != first {
		t.Fatalf("GetByExamAndStudent = %v, %v", got, err)
	}
	if _, err := repo.GetByID(ctx, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for rejected session, got %v", err)
	}
}

func TestExamSessionRepository_ResultsByExam(t *testing.T) {
	repo := NewExamSessionRepository()
	ctx := context.Background()
	exam := newPublishableExam(t, "final")

	var submitted *session.ExamSession
	for i, name := range []string{"alice", "bob"} {
		s, err := session.New(model.Student{ID: uuid.New(), Username: name}, exam, random.New(int64(i)))
		if err != nil {
			t.Fatalf("session.New: %v", err)
		}
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create: %v", err)
		}
		exam.AddSessionRecord(s.ID)
		if name == "alice" {
			submitted = s
		}
	}

	result := submitted.Submit()
	repo.IndexResult(ctx, submitted, result)

	results := repo.ResultsByExam(ctx, exam)
	if len(results) != 1 || results[0] != result {
		t.Fatalf("ResultsByExam returned %v, want only alice's result", results)
	}

	got, owner, err := repo.GetResult(ctx, result.ID)
	if err != nil || got != result || owner != submitted {
		t.Fatalf("GetResult = %v, %v, %v", got, owner, err)
	}
	if _, _, err := repo.GetResult(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
