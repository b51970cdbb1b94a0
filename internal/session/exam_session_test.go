package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/random"
)

var (
	testAdmin   = model.Admin{ID: uuid.New(), Username: "admin"}
	testStudent = model.Student{ID: uuid.New(), Username: "student1"}
)

type fixture struct {
	exam *model.Exam
	q1   *model.ObjectiveQuestion
	q2   *model.ObjectiveQuestion
}

func newFixture(t *testing.T, duration time.Duration) fixture {
	t.Helper()
	q1, err := model.NewObjectiveQuestion("Q1", "Capital of France?", 1, []string{"London", "Paris"}, "Paris")
	if err != nil {
		t.Fatalf("q1: %v", err)
	}
	q2, err := model.NewObjectiveQuestion("Q2", "Red planet?", 1, []string{"Earth", "Mars"}, "Mars")
	if err != nil {
		t.Fatalf("q2: %v", err)
	}
	exam, err := model.NewExam("GK", duration, testAdmin, nil)
	if err != nil {
		t.Fatalf("exam: %v", err)
	}
	exam.AddQuestion(q1)
	exam.AddQuestion(q2)
	return fixture{exam: exam, q1: q1, q2: q2}
}

func newSession(t *testing.T, exam *model.Exam, opts ...Option) *ExamSession {
	t.Helper()
	s, err := New(testStudent, exam, random.New(1), opts...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestManualSubmitScoresAnswers(t *testing.T) {
	f := newFixture(t, time.Minute)
	s := newSession(t, f.exam)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := s.SubmitAnswer(f.q1, "Paris"); err != nil {
		t.Fatalf("answer q1: %v", err)
	}
	if err := s.SubmitAnswer(f.q2, "London"); err != nil {
		t.Fatalf("answer q2: %v", err)
	}

	r := s.Submit()
	if r.Score != 1 || r.TotalMarks != 2 {
		t.Fatalf("expected 1/2, got %d/%d", r.Score, r.TotalMarks)
	}
	if r.Reason != model.SubmitReasonManual {
		t.Fatalf("expected manual reason, got %s", r.Reason)
	}
	if s.State() != StateSubmitted {
		t.Fatalf("expected SUBMITTED, got %s", s.State())
	}
	if s.Remaining() != 0 {
		t.Fatal("expected timer to be stopped after submit")
	}
}

func TestTimeoutAutoSubmits(t *testing.T) {
	f := newFixture(t, 30*time.Millisecond)

	var hookCalls atomic.Int32
	s := newSession(t, f.exam, WithSubmitHook(func(*ExamSession, *model.ExamResult) { hookCalls.Add(1) }))
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session was not auto-submitted")
	}

	r := s.Result()
	if r == nil {
		t.Fatal("expected result after timeout")
	}
	if r.Score != 0 || r.TotalMarks != 2 {
		t.Fatalf("expected 0/2, got %d/%d", r.Score, r.TotalMarks)
	}
	if r.Reason != model.SubmitReasonTimeout {
		t.Fatalf("expected timeout reason, got %s", r.Reason)
	}

	if again := s.Submit(); again != r {
		t.Fatal("expected manual submit after timeout to return the same result")
	}
	deadline := time.Now().Add(time.Second)
	for hookCalls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	if got := hookCalls.Load(); got != 1 {
		t.Fatalf("expected hook once, got %d", got)
	}
}

func TestTimeoutUsesRecordedAnswers(t *testing.T) {
	f := newFixture(t, 30*time.Millisecond)
	s := newSession(t, f.exam)
	_ = s.Start()
	_ = s.SubmitAnswer(f.q2, " mars ")

	<-s.Done()
	if got := s.Result().Score; got != 1 {
		t.Fatalf("expected score 1 from the answer recorded before timeout, got %d", got)
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	f := newFixture(t, time.Minute)
	s := newSession(t, f.exam)
	_ = s.Start()
	_ = s.SubmitAnswer(f.q1, "paris")

	first := s.Submit()
	second := s.Submit()
	if first != second {
		t.Fatal("expected the identical result object")
	}
	if first.ID != second.ID || first.Score != 1 {
		t.Fatalf("unexpected result %+v", first)
	}
}

func TestConcurrentSubmitSingleWinner(t *testing.T) {
	f := newFixture(t, time.Minute)

	var hookCalls atomic.Int32
	s := newSession(t, f.exam, WithSubmitHook(func(*ExamSession, *model.ExamResult) { hookCalls.Add(1) }))
	_ = s.Start()

	const n = 32
	results := make([]*model.ExamResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Submit()
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r == nil || r != results[0] {
			t.Fatalf("goroutine %d got a different result", i)
		}
	}
	if got := hookCalls.Load(); got != 1 {
		t.Fatalf("expected scoring once, got %d hook calls", got)
	}
}

func TestAnswerAfterSubmitRejected(t *testing.T) {
	f := newFixture(t, time.Minute)
	s := newSession(t, f.exam)
	_ = s.Start()
	_ = s.SubmitAnswer(f.q1, "London")
	s.Submit()

	if err := s.SubmitAnswer(f.q1, "Paris"); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
	answers := s.Answers()
	if len(answers) != 1 || answers[0].Answer != "London" {
		t.Fatalf("expected answers unchanged, got %+v", answers)
	}
	if err := s.Start(); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected start after submit to fail, got %v", err)
	}
}

func TestForeignQuestionRejected(t *testing.T) {
	f := newFixture(t, time.Minute)
	s := newSession(t, f.exam)
	_ = s.Start()
	defer s.Submit()

	lookalike, _ := model.NewObjectiveQuestion("Q1", "Capital of France?", 1, []string{"London", "Paris"}, "Paris")
	if err := s.SubmitAnswer(lookalike, "Paris"); !errors.Is(err, ErrQuestionNotInSession) {
		t.Fatalf("expected identity membership check, got %v", err)
	}
	if _, err := s.SubmitAnswerByID("nope", "x"); !errors.Is(err, ErrQuestionNotInSession) {
		t.Fatalf("expected ErrQuestionNotInSession, got %v", err)
	}
}

func TestResubmissionOverwrites(t *testing.T) {
	f := newFixture(t, time.Minute)
	s := newSession(t, f.exam)
	_ = s.Start()

	_ = s.SubmitAnswer(f.q1, "London")
	_ = s.SubmitAnswer(f.q2, "Mars")
	if _, err := s.SubmitAnswerByID("Q1", "Paris"); err != nil {
		t.Fatalf("answer by id: %v", err)
	}

	answers := s.Answers()
	if len(answers) != 2 {
		t.Fatalf("expected one entry per question, got %d", len(answers))
	}
	if answers[0].QuestionID != "Q1" || answers[0].Answer != "Paris" {
		t.Fatalf("expected insertion order kept with overwritten value, got %+v", answers)
	}
	if r := s.Submit(); r.Score != 2 {
		t.Fatalf("expected 2, got %d", r.Score)
	}
}

func TestTraversal(t *testing.T) {
	f := newFixture(t, time.Minute)
	s := newSession(t, f.exam)
	_ = s.Start()
	defer s.Submit()

	seen := make(map[string]bool)
	for i := 0; i < 2; i++ {
		q, ok := s.CurrentQuestion()
		if !ok {
			t.Fatalf("expected question at position %d", i)
		}
		seen[q.ID()] = true
		s.Advance()
	}
	if len(seen) != 2 {
		t.Fatalf("expected to visit both questions, got %v", seen)
	}

	if _, ok := s.CurrentQuestion(); ok {
		t.Fatal("expected no question past the end")
	}
	s.Advance()
	s.Advance()
	if _, ok := s.CurrentQuestion(); ok {
		t.Fatal("expected advancing past the end to be harmless")
	}
}

func TestNoQuestionsFailsCreation(t *testing.T) {
	exam, _ := model.NewExam("empty", time.Minute, testAdmin, model.NewQuestionPool("p", testAdmin))
	_ = exam.SetRandomQuestionCount(3)

	s, err := New(testStudent, exam, random.New(1))
	if !errors.Is(err, model.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
	if s != nil {
		t.Fatal("expected no session")
	}
}

func TestSnapshotIsolatedFromExamChanges(t *testing.T) {
	f := newFixture(t, time.Minute)
	s := newSession(t, f.exam)

	extra, _ := model.NewEssayQuestion("E1", "Explain.", 5)
	f.exam.AddQuestion(extra)

	if got := len(s.Questions()); got != 2 {
		t.Fatalf("expected snapshot of 2, got %d", got)
	}
	if err := s.SubmitAnswer(extra, "text"); !errors.Is(err, ErrQuestionNotInSession) {
		t.Fatalf("expected later exam question to be outside the session, got %v", err)
	}
	if r := s.Submit(); r.TotalMarks != 2 {
		t.Fatalf("expected total from snapshot only, got %d", r.TotalMarks)
	}
}

func TestTotalMarksIncludesUnanswered(t *testing.T) {
	f := newFixture(t, time.Minute)
	essay, _ := model.NewEssayQuestion("E1", "Explain.", 5)
	f.exam.AddQuestion(essay)

	s := newSession(t, f.exam)
	_ = s.Start()
	_ = s.SubmitAnswer(essay, "a long answer")
	_ = s.SubmitAnswer(f.q1, "Paris")

	r := s.Submit()
	if r.Score != 1 || r.TotalMarks != 7 {
		t.Fatalf("expected 1/7, got %d/%d", r.Score, r.TotalMarks)
	}
}

func TestSubmitWithoutStart(t *testing.T) {
	f := newFixture(t, time.Minute)
	s := newSession(t, f.exam)

	r := s.Submit()
	if r == nil || r.Score != 0 || r.TotalMarks != 2 {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestViewAndClock(t *testing.T) {
	f := newFixture(t, time.Minute)
	fixed := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	s := newSession(t, f.exam, WithClock(func() time.Time { return fixed }))
	_ = s.Start()
	_ = s.SubmitAnswer(f.q1, "Paris")

	v := s.View()
	if v.State != StateInProgress || v.QuestionCount != 2 || v.AnsweredCount != 1 {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.CurrentQuestion == nil {
		t.Fatal("expected current question in view")
	}
	if v.StartedAt == nil || !v.StartedAt.Equal(fixed) {
		t.Fatalf("expected start time from clock, got %v", v.StartedAt)
	}

	s.Submit()
	v = s.View()
	if v.ResultID == nil || v.EndedAt == nil {
		t.Fatalf("expected result and end time after submit, got %+v", v)
	}
}

func TestHooksCompleteBeforeDone(t *testing.T) {
	f := newFixture(t, time.Minute)

	var indexed atomic.Bool
	s := newSession(t, f.exam, WithSubmitHook(func(*ExamSession, *model.ExamResult) {
		time.Sleep(20 * time.Millisecond)
		indexed.Store(true)
	}))
	_ = s.Start()

	var wg sync.WaitGroup
	var early atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Submit()
			if !indexed.Load() {
				early.Add(1)
			}
		}()
	}
	wg.Wait()

	if n := early.Load(); n != 0 {
		t.Fatalf("%d submit calls returned before the hook finished", n)
	}
	select {
	case <-s.Done():
	default:
		t.Fatal("expected Done to be closed after submit")
	}
}
