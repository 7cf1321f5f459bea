package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bkbadhon/elearning/internal/config"
	"github.com/bkbadhon/elearning/internal/db"
	apphttp "github.com/bkbadhon/elearning/internal/http"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// These tests need a real postgres; set TEST_DB_DSN to run them.

func setupTestRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)

	if err != nil {
		t.Fatalf("failed to create pgx pool: %v", err)
	}

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	// logger that discards output during tests
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg := config.Config{Env: "test"}

	router := apphttp.NewRouter(logger, pool, cfg, nil, nil, nil)

	return router, pool
}

// reset db after every test; jobs and enrollments reference users/courses rows

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`TRUNCATE jobs, enrollments, users, courses`)

	if err != nil {
		t.Fatalf("failed to reset db: %v", err)
	}
}

func seedCourse(t *testing.T, pool *pgxpool.Pool, price int64) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO courses (id, title, price, image, description, topics, meeting_link, created_at, updated_at)
		VALUES ($1,$2,$3,'','', $4,'',$5,$5)`,
		id, "Integration Course", price, []string{"testing"}, now)

	if err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}

	return id
}

func registerUser(t *testing.T, router *gin.Engine, email string, balance int64) string {
	t.Helper()

	body := map[string]any{
		"firstName": "Inte",
		"lastName":  "Gration",
		"email":     email,
		"password":  "secret",
		"phone":     "01700000000",
		"balance":   balance,
	}
	raw, _ := json.Marshal(body)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("register got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Result struct {
			ID string `json:"id"`
		} `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}

	return resp.Result.ID
}

func enroll(router *gin.Engine, userID, courseID string) *httptest.ResponseRecorder {
	body := `{"userId": "` + userID + `", "courseId": "` + courseID + `"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/enroll", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	return w
}

func TestEnrollFlow(t *testing.T) {
	router, pool := setupTestRouter(t)
	defer pool.Close()
	resetDB(t, pool)

	courseID := seedCourse(t, pool, 300)
	userID := registerUser(t, router, "flow@example.com", 1000)

	w := enroll(router, userID, courseID)

	if w.Code != http.StatusOK {
		t.Fatalf("enroll got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool  `json:"success"`
		Balance int64 `json:"balance"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal enroll response: %v", err)
	}

	if !resp.Success || resp.Balance != 700 {
		t.Fatalf("unexpected enroll response: %s", w.Body.String())
	}

	// the confirmation job commits together with the enrollment
	var jobCount int
	if err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM jobs WHERE status = 'pending'`).Scan(&jobCount); err != nil {
		t.Fatalf("count jobs: %v", err)
	}
	if jobCount != 1 {
		t.Fatalf("expected 1 pending job, got %d", jobCount)
	}

	// listing returns the snapshot
	lw := httptest.NewRecorder()
	lreq := httptest.NewRequest(http.MethodGet, "/enrollments?userId="+userID, nil)
	router.ServeHTTP(lw, lreq)

	if lw.Code != http.StatusOK {
		t.Fatalf("list got %d body=%s", lw.Code, lw.Body.String())
	}

	var enrollments []map[string]any
	if err := json.Unmarshal(lw.Body.Bytes(), &enrollments); err != nil {
		t.Fatalf("unmarshal list response: %v", err)
	}
	if len(enrollments) != 1 {
		t.Fatalf("expected 1 enrollment, got %d", len(enrollments))
	}
}

func TestEnroll_InsufficientBalanceRollsBack(t *testing.T) {
	router, pool := setupTestRouter(t)
	defer pool.Close()
	resetDB(t, pool)

	courseID := seedCourse(t, pool, 500)
	userID := registerUser(t, router, "poor@example.com", 100)

	w := enroll(router, userID, courseID)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("enroll got %d, want 400, body=%s", w.Code, w.Body.String())
	}

	var balance int64
	if err := pool.QueryRow(context.Background(),
		`SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance); err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if balance != 100 {
		t.Fatalf("balance changed on a failed enrollment: %d", balance)
	}

	var count int
	if err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM enrollments WHERE user_id = $1`, userID).Scan(&count); err != nil {
		t.Fatalf("count enrollments: %v", err)
	}
	if count != 0 {
		t.Fatalf("enrollment row written despite the failed debit")
	}
}

// Two concurrent enrollments against a balance that covers exactly one must
// serialize on the locked user row: one wins, one gets the shortfall error and
// the balance never goes negative.
func TestEnroll_ConcurrentDebitsDoNotOverdraw(t *testing.T) {
	router, pool := setupTestRouter(t)
	defer pool.Close()
	resetDB(t, pool)

	courseID := seedCourse(t, pool, 300)
	userID := registerUser(t, router, "race@example.com", 300)

	var wg sync.WaitGroup
	codes := make([]int, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			codes[i] = enroll(router, userID, courseID).Code
		}(i)
	}

	wg.Wait()

	oks := 0
	for _, c := range codes {
		if c == http.StatusOK {
			oks++
		}
	}
	if oks != 1 {
		t.Fatalf("expected exactly one winner, got codes %v", codes)
	}

	var balance int64
	if err := pool.QueryRow(context.Background(),
		`SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance); err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("expected balance 0 after one successful debit, got %d", balance)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	router, pool := setupTestRouter(t)
	defer pool.Close()
	resetDB(t, pool)

	registerUser(t, router, "dupe@example.com", 0)

	body := `{"firstName":"A","lastName":"B","email":"dupe@example.com","password":"x"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register got %d, want 409, body=%s", w.Code, w.Body.String())
	}
}
