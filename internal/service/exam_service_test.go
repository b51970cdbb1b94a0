package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stemsi/examsession/internal/model"
)

var testAdmin = model.Admin{ID: uuid.New(), Username: "proctor"}

func objectiveReq(id, correct string) *model.AddQuestionRequest {
	return &model.AddQuestionRequest{
		ID:            id,
		Text:          "question " + id,
		Type:          string(model.QuestionTypeObjective),
		Marks:         1,
		Options:       []string{"a", "b", "c"},
		CorrectAnswer: correct,
	}
}

func essayReq(id string, marks int) *model.AddQuestionRequest {
	return &model.AddQuestionRequest{ID: id, Text: "essay " + id, Type: string(model.QuestionTypeEssay), Marks: marks}
}

func TestExamService_PublishEmptyExamFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	exam, err := f.exams.Create(ctx, testAdmin, &model.CreateExamRequest{Name: "empty", DurationSeconds: 60})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.exams.Publish(ctx, exam.ID); !errors.Is(err, model.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
	if exam.Published() {
		t.Fatal("empty exam must stay unpublished")
	}
}

func TestExamService_AddQuestionFromPool(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	pool, err := f.pools.Create(ctx, testAdmin, &model.CreatePoolRequest{Name: "algebra"})
	if err != nil {
		t.Fatalf("pool Create: %v", err)
	}
	if _, err := f.pools.AddQuestion(ctx, pool.ID, objectiveReq("p1", "a")); err != nil {
		t.Fatalf("pool AddQuestion: %v", err)
	}

	exam, err := f.exams.Create(ctx, testAdmin, &model.CreateExamRequest{Name: "quiz", DurationSeconds: 60, PoolID: &pool.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	q, err := f.exams.AddQuestion(ctx, exam.ID, &model.AddExamQuestionRequest{PoolQuestionID: "p1"})
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	poolQ, _ := pool.QuestionByID("p1")
	if q != poolQ {
		t.Fatal("expected the pool's question instance to be shared")
	}

	if _, err := f.exams.AddQuestion(ctx, exam.ID, &model.AddExamQuestionRequest{PoolQuestionID: "missing"}); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestExamService_PoolReferenceWithoutPool(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	exam, err := f.exams.Create(ctx, testAdmin, &model.CreateExamRequest{Name: "no pool", DurationSeconds: 60})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = f.exams.AddQuestion(ctx, exam.ID, &model.AddExamQuestionRequest{PoolQuestionID: "p1"})
	if !errors.Is(err, ErrExamHasNoPool) {
		t.Fatalf("expected ErrExamHasNoPool, got %v", err)
	}
}

func TestExamService_CreateWithUnknownPool(t *testing.T) {
	f := newFixture()
	missing := uuid.New()
	_, err := f.exams.Create(context.Background(), testAdmin, &model.CreateExamRequest{Name: "bad", DurationSeconds: 60, PoolID: &missing})
	if !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
}

func TestExamService_ResultReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	exam, err := f.exams.Create(ctx, testAdmin, &model.CreateExamRequest{Name: "mixed", DurationSeconds: 60})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, req := range []*model.AddQuestionRequest{objectiveReq("q1", "a"), essayReq("e1", 5)} {
		if _, err := f.exams.AddQuestion(ctx, exam.ID, &model.AddExamQuestionRequest{Question: req}); err != nil {
			t.Fatalf("AddQuestion: %v", err)
		}
	}
	if _, err := f.exams.Publish(ctx, exam.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	alice := model.Student{ID: uuid.New(), Username: "alice"}
	sess, err := f.sessions.StartExam(ctx, alice, exam.ID)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}
	if _, err := sess.SubmitAnswerByID("q1", "a"); err != nil {
		t.Fatalf("answer q1: %v", err)
	}
	if _, err := sess.SubmitAnswerByID("e1", "long prose"); err != nil {
		t.Fatalf("answer e1: %v", err)
	}
	result, err := f.sessions.Submit(ctx, alice, sess.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score != 1 || result.TotalMarks != 6 {
		t.Fatalf("score = %d/%d, want 1/6", result.Score, result.TotalMarks)
	}

	if _, err := f.exams.GradeAnswer(ctx, result.ID, "e1", 9); !errors.Is(err, model.ErrInvalidGrade) {
		t.Fatalf("expected ErrInvalidGrade, got %v", err)
	}
	if _, err := f.exams.GradeAnswer(ctx, result.ID, "q1", 1); !errors.Is(err, ErrNotManuallyGraded) {
		t.Fatalf("expected ErrNotManuallyGraded, got %v", err)
	}
	if _, err := f.exams.GradeAnswer(ctx, result.ID, "e1", 4); err != nil {
		t.Fatalf("GradeAnswer: %v", err)
	}
	if got := result.AdjustedScore(); got != 5 {
		t.Fatalf("AdjustedScore = %d, want 5", got)
	}

	if _, err := f.exams.SetComments(ctx, result.ID, "good work"); err != nil {
		t.Fatalf("SetComments: %v", err)
	}
	if _, err := f.sessions.StudentResult(ctx, alice, exam.ID); !errors.Is(err, ErrResultNotPublished) {
		t.Fatalf("expected ErrResultNotPublished, got %v", err)
	}
	if _, err := f.exams.PublishResult(ctx, result.ID); err != nil {
		t.Fatalf("PublishResult: %v", err)
	}
	got, err := f.sessions.StudentResult(ctx, alice, exam.ID)
	if err != nil || got != result || got.Comments() != "good work" {
		t.Fatalf("StudentResult = %v, %v", got, err)
	}

	summary, err := f.exams.Summary(ctx, exam.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Count != 1 || summary.Highest != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	if _, err := f.exams.PublishResult(ctx, uuid.New()); !errors.Is(err, ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound, got %v", err)
	}
}

func TestExamService_GradeUnansweredEssay(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	exam, err := f.exams.Create(ctx, testAdmin, &model.CreateExamRequest{Name: "blank", DurationSeconds: 60})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, req := range []*model.AddQuestionRequest{objectiveReq("q1", "a"), essayReq("e1", 5)} {
		if _, err := f.exams.AddQuestion(ctx, exam.ID, &model.AddExamQuestionRequest{Question: req}); err != nil {
			t.Fatalf("AddQuestion: %v", err)
		}
	}
	if _, err := f.exams.Publish(ctx, exam.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	bob := model.Student{ID: uuid.New(), Username: "bob"}
	sess, err := f.sessions.StartExam(ctx, bob, exam.ID)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}
	result, err := f.sessions.Submit(ctx, bob, sess.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := f.exams.GradeAnswer(ctx, result.ID, "e1", 5); !errors.Is(err, ErrQuestionNotAnswered) {
		t.Fatalf("expected ErrQuestionNotAnswered, got %v", err)
	}
	if got := result.AdjustedScore(); got != 0 {
		t.Fatalf("AdjustedScore = %d, want 0", got)
	}
	if len(result.ManualGrades()) != 0 {
		t.Fatalf("expected empty grade ledger, got %v", result.ManualGrades())
	}
}
