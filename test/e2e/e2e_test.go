//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stemsi/examsession/internal/model"
)

const defaultBaseURL = "http://localhost:8080/api/v1"

var (
	baseURL   string
	adminUser string
	adminPass string
)

// TestMain expects a running server whose bootstrap admin matches
// E2E_ADMIN_USERNAME / E2E_ADMIN_PASSWORD.
func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env")

	baseURL = envOr("BASE_URL", defaultBaseURL)
	adminUser = envOr("E2E_ADMIN_USERNAME", "admin")
	adminPass = os.Getenv("E2E_ADMIN_PASSWORD")
	if adminPass == "" {
		fmt.Println("E2E_ADMIN_PASSWORD not set, skipping e2e tests")
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestE2EFlow(t *testing.T) {
	// Server state lives in memory, so every run uses fresh names.
	suffix := time.Now().Format("150405.000")
	studentName := "e2e_" + suffix
	studentPass := "password123"

	var adminToken, studentToken, poolID, examID, sessionID, resultID string

	t.Run("AdminLogin", func(t *testing.T) {
		var data model.LoginResponse
		call(t, http.MethodPost, "/auth/admin/login", "", model.LoginRequest{Username: adminUser, Password: adminPass}, http.StatusOK, &data)
		adminToken = data.Token
	})

	t.Run("CreateStudent", func(t *testing.T) {
		req := model.CreateStudentRequest{Username: studentName, Password: studentPass}
		call(t, http.MethodPost, "/admin/students", adminToken, req, http.StatusCreated, nil)
		call(t, http.MethodPost, "/admin/students", adminToken, req, http.StatusConflict, nil)
	})

	t.Run("AuthorPool", func(t *testing.T) {
		var data struct {
			Pool model.PoolView `json:"pool"`
		}
		call(t, http.MethodPost, "/admin/pools", adminToken, model.CreatePoolRequest{Name: "E2E pool " + suffix}, http.StatusCreated, &data)
		poolID = data.Pool.ID.String()

		for i := 1; i <= 5; i++ {
			q := model.AddQuestionRequest{
				ID:            fmt.Sprintf("p%d", i),
				Text:          fmt.Sprintf("%d + %d = ?", i, i),
				Type:          string(model.QuestionTypeObjective),
				Marks:         1,
				Options:       []string{fmt.Sprint(2 * i), fmt.Sprint(2*i + 1)},
				CorrectAnswer: fmt.Sprint(2 * i),
			}
			call(t, http.MethodPost, "/admin/pools/"+poolID+"/questions", adminToken, q, http.StatusCreated, nil)
		}
	})

	t.Run("AuthorExam", func(t *testing.T) {
		var data struct {
			Exam model.ExamView `json:"exam"`
		}
		req := map[string]interface{}{
			"name":                  "E2E exam " + suffix,
			"duration_seconds":      120,
			"pool_id":               poolID,
			"random_question_count": 3,
		}
		call(t, http.MethodPost, "/admin/exams", adminToken, req, http.StatusCreated, &data)
		examID = data.Exam.ID.String()

		call(t, http.MethodPost, "/admin/exams/"+examID+"/questions", adminToken,
			model.AddExamQuestionRequest{PoolQuestionID: "p1"}, http.StatusCreated, nil)
		call(t, http.MethodPost, "/admin/exams/"+examID+"/publish", adminToken, nil, http.StatusOK, &data)
		if data.Exam.QuestionCount != 4 {
			t.Fatalf("question count = %d, want 4", data.Exam.QuestionCount)
		}
	})

	t.Run("StudentTakesExam", func(t *testing.T) {
		var login model.LoginResponse
		call(t, http.MethodPost, "/auth/student/login", "", model.LoginRequest{Username: studentName, Password: studentPass}, http.StatusOK, &login)
		studentToken = login.Token

		var data struct {
			Session struct {
				ID            string `json:"id"`
				QuestionCount int    `json:"question_count"`
			} `json:"session"`
		}
		call(t, http.MethodPost, "/student/exams/"+examID+"/start", studentToken, nil, http.StatusCreated, &data)
		sessionID = data.Session.ID
		if data.Session.QuestionCount != 4 {
			t.Fatalf("session has %d questions, want 4", data.Session.QuestionCount)
		}
		call(t, http.MethodPost, "/student/exams/"+examID+"/start", studentToken, nil, http.StatusConflict, nil)

		call(t, http.MethodPut, "/student/sessions/"+sessionID+"/answers", studentToken,
			map[string]string{"question_id": "p1", "answer": "2"}, http.StatusOK, nil)

		var result struct {
			ResultID string `json:"result_id"`
			Score    int    `json:"score"`
		}
		call(t, http.MethodPost, "/student/sessions/"+sessionID+"/submit", studentToken, nil, http.StatusOK, &result)
		if result.Score != 1 {
			t.Fatalf("score = %d, want 1", result.Score)
		}
		resultID = result.ResultID
	})

	t.Run("ReviewResults", func(t *testing.T) {
		var data struct {
			Results []model.ResultView `json:"results"`
		}
		call(t, http.MethodGet, "/admin/exams/"+examID+"/results", adminToken, nil, http.StatusOK, &data)
		if len(data.Results) != 1 || data.Results[0].ID.String() != resultID {
			t.Fatalf("unexpected results %+v", data.Results)
		}

		call(t, http.MethodGet, "/student/exams/"+examID+"/result", studentToken, nil, http.StatusForbidden, nil)
		call(t, http.MethodPost, "/admin/results/"+resultID+"/publish", adminToken, nil, http.StatusOK, nil)
		call(t, http.MethodGet, "/student/exams/"+examID+"/result", studentToken, nil, http.StatusOK, nil)
	})
}

// call sends a JSON request, checks the status and decodes the envelope data into out.
func call(t *testing.T, method, path, token string, body interface{}, wantStatus int, out interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, baseURL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status %d, want %d: %s", method, path, resp.StatusCode, wantStatus, raw)
	}
	if out == nil {
		return
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}
