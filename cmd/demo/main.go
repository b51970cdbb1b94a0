// Command demo runs a complete exam lifecycle in-process: an admin authors a
// pool-backed exam, one student submits manually and another runs out of time.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/config"
	"github.com/stemsi/examsession/internal/logger"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/random"
	"github.com/stemsi/examsession/internal/repository"
	"github.com/stemsi/examsession/internal/service"
	"github.com/stemsi/examsession/internal/session"
	"github.com/stemsi/examsession/internal/timer"
	"github.com/stemsi/examsession/internal/worker"
)

type answerer func(q model.Question) string

func main() {
	seed := flag.Int64("seed", 0, "random seed for question sampling (0 = random)")
	duration := flag.Duration("duration", 3*time.Second, "exam duration")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	log := logger.Setup(*logLevel, "pretty")
	if err := run(log, *seed, *duration); err != nil {
		color.Red("demo failed: %v", err)
		os.Exit(1)
	}
}

func run(log zerolog.Logger, seed int64, duration time.Duration) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rnd, seed, err := random.NewFromConfig(seed)
	if err != nil {
		return err
	}

	cfg := &config.Config{JWTSecret: "demo", JWTExpiry: time.Hour, BcryptCost: 4}

	accounts := repository.NewAccountRepository()
	pools := repository.NewQuestionPoolRepository()
	exams := repository.NewExamRepository()
	sessions := repository.NewExamSessionRepository()

	events := worker.NewEventWorker(worker.NewLogSink(log), 64, 10, 500*time.Millisecond, log)
	go events.Start(ctx)

	authService := service.NewAuthService(cfg, accounts, log)
	poolService := service.NewQuestionPoolService(pools, log)
	examService := service.NewExamService(exams, pools, sessions, events, log)
	sessionService := service.NewExamSessionService(exams, sessions, rnd, events, log)

	color.Cyan("\n=== Exam Session Demo (seed %d) ===", seed)

	admin := model.Admin{Username: "adminUser"}
	var students []model.Student
	for _, name := range []string{"student1", "student2"} {
		acc, err := authService.CreateStudent(ctx, &model.CreateStudentRequest{Username: name, Password: name + "Pass"})
		if err != nil {
			return err
		}
		students = append(students, acc.Student())
	}

	pool, err := poolService.Create(ctx, admin, &model.CreatePoolRequest{Name: "General Knowledge Pool"})
	if err != nil {
		return err
	}
	for _, req := range poolQuestions() {
		if _, err := poolService.AddQuestion(ctx, pool.ID, &req); err != nil {
			return err
		}
	}

	seconds, err := durationSeconds(duration)
	if err != nil {
		return err
	}
	exam, err := examService.Create(ctx, admin, &model.CreateExamRequest{
		Name:                "General Knowledge Test",
		DurationSeconds:     seconds,
		PoolID:              &pool.ID,
		RandomQuestionCount: 3,
	})
	if err != nil {
		return err
	}
	if _, err := examService.AddQuestion(ctx, exam.ID, &model.AddExamQuestionRequest{PoolQuestionID: "GK_Q1"}); err != nil {
		return err
	}
	if _, err := examService.Publish(ctx, exam.ID); err != nil {
		return err
	}
	color.Green("Published %q with %d questions per session, %s each", exam.Name, exam.FeasibleQuestionCount(), timer.FormatRemaining(exam.Duration))

	// student1 answers everything correctly and submits.
	s1, err := take(ctx, sessionService, students[0], exam, func(q model.Question) string {
		if oq, ok := q.(*model.ObjectiveQuestion); ok {
			return oq.CorrectAnswer()
		}
		return "A brief essay answer..."
	})
	if err != nil {
		return err
	}
	r1 := s1.Submit()
	fmt.Printf("student1 submitted: %d/%d\n", r1.Score, r1.TotalMarks)

	// student2 answers with the first option and waits for the clock.
	s2, err := take(ctx, sessionService, students[1], exam, func(q model.Question) string {
		if oq, ok := q.(*model.ObjectiveQuestion); ok {
			return oq.Options()[0]
		}
		return "Another essay answer..."
	})
	if err != nil {
		return err
	}
	color.Yellow("student2 waiting for the timer (%s left)...", timer.FormatRemaining(s2.Remaining()))
	<-s2.Done()
	r2 := s2.Result()
	fmt.Printf("student2 auto-submitted: %d/%d\n", r2.Score, r2.TotalMarks)

	results, err := examService.Results(ctx, exam.ID)
	if err != nil {
		return err
	}
	printResults(sessions, results)

	summary, err := examService.Summary(ctx, exam.ID)
	if err != nil {
		return err
	}
	printSummary(summary)
	return nil
}

// take starts a session and answers every question in order.
func take(ctx context.Context, svc *service.ExamSessionService, student model.Student, exam *model.Exam, answer answerer) (*session.ExamSession, error) {
	s, err := svc.StartExam(ctx, student, exam.ID)
	if err != nil {
		return nil, err
	}
	for {
		q, ok := s.CurrentQuestion()
		if !ok {
			return s, nil
		}
		if err := s.SubmitAnswer(q, answer(q)); err != nil {
			return nil, err
		}
		s.Advance()
	}
}

func printResults(sessions *repository.ExamSessionRepository, results []*model.ExamResult) {
	color.Yellow("\nExam Results")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Student", "Score", "Reason", "Question", "Answer"})
	table.SetAutoMergeCells(true)

	for _, r := range results {
		_, s, err := sessions.GetResult(context.Background(), r.ID)
		if err != nil {
			continue
		}
		score := fmt.Sprintf("%d/%d", r.Score, r.TotalMarks)
		for _, a := range s.Answers() {
			table.Append([]string{r.Student.Username, score, string(r.Reason), a.QuestionID, truncate(a.Answer, 24)})
		}
	}
	table.Render()
}

func printSummary(s model.Summary) {
	color.Yellow("\nExam Summary")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Results", "Average", "Highest", "Lowest"})
	table.Append([]string{
		fmt.Sprintf("%d", s.Count),
		fmt.Sprintf("%.2f", s.Average),
		fmt.Sprintf("%d", s.Highest),
		fmt.Sprintf("%d", s.Lowest),
	})
	table.Render()
}

// durationSeconds converts the -duration flag to whole exam seconds, rounding
// partial seconds up.
func durationSeconds(d time.Duration) (int, error) {
	if d < time.Second {
		return 0, fmt.Errorf("duration must be at least 1s, got %s", d)
	}
	return int((d + time.Second - 1) / time.Second), nil
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}

func poolQuestions() []model.AddQuestionRequest {
	objective := string(model.QuestionTypeObjective)
	essay := string(model.QuestionTypeEssay)
	return []model.AddQuestionRequest{
		{ID: "GK_Q1", Text: "What is the capital of France?", Type: objective, Marks: 1,
			Options: []string{"London", "Paris", "Berlin", "Rome"}, CorrectAnswer: "Paris"},
		{ID: "GK_Q2", Text: "Which planet is known as the Red Planet?", Type: objective, Marks: 1,
			Options: []string{"Earth", "Mars", "Jupiter", "Venus"}, CorrectAnswer: "Mars"},
		{ID: "GK_E1", Text: "Explain the theory of relativity in brief.", Type: essay, Marks: 5},
		{ID: "GK_Q3", Text: "What is the largest mammal?", Type: objective, Marks: 2,
			Options: []string{"Elephant", "Blue Whale", "Giraffe", "Lion"}, CorrectAnswer: "Blue Whale"},
		{ID: "GK_E2", Text: "Discuss the impact of artificial intelligence on society.", Type: essay, Marks: 8},
	}
}
