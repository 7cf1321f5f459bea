package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bkbadhon/elearning/internal/domain/user"
	"github.com/bkbadhon/elearning/internal/http/handlers"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

// Fake repository implementation of the handlers.UsersStore interface

type fakeUsersRepo struct {
	createFn     func(ctx context.Context, u user.User) error
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	getByPhoneFn func(ctx context.Context, phone string) (user.User, error)
}

func (f *fakeUsersRepo) Create(ctx context.Context, u user.User) error {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}

	return nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}

	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) GetByPhone(ctx context.Context, phone string) (user.User, error) {
	if f.getByPhoneFn != nil {
		return f.getByPhoneFn(ctx, phone)
	}

	return user.User{}, user.ErrNotFound
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{
				"firstName": "Rahim",
				"lastName": "Uddin",
				"email": "rahim@example.com",
				"password": "secret",
				"phone": "01700000000",
				"balance": 5000
			}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "email_already_registered",
			body: `{
				"firstName": "Rahim",
				"lastName": "Uddin",
				"email": "rahim@example.com",
				"password": "secret"
			}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return user.User{ID: newUUID(), Email: email}, nil
				}
			},
			wantStatusCode: http.StatusConflict,
		},
		// pre-check missed a concurrent insert; the unique index surfaces it
		{
			name: "email_taken_on_insert",
			body: `{
				"firstName": "Rahim",
				"lastName": "Uddin",
				"email": "rahim@example.com",
				"password": "secret"
			}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, u user.User) error {
					return user.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name: "validation_error",
			body: `{"email": "not-an-email"}`,
			repoSetup: func(f *fakeUsersRepo) {
				// the repo should not be called for an invalid payload
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "negative_balance_rejected",
			body: `{
				"firstName": "Rahim",
				"lastName": "Uddin",
				"email": "rahim@example.com",
				"password": "secret",
				"balance": -10
			}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{
				"firstName": "Rahim",
				"lastName": "Uddin",
				"email": "rahim@example.com",
				"password": "secret"
			}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, u user.User) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeUsersRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewUsersHandler(fakeRepo)

			r := setupRouter(http.MethodPost, "/register", h.Register)

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	now := time.Now().UTC()

	stored := user.User{
		ID:        newUUID(),
		FirstName: "Rahim",
		LastName:  "Uddin",
		Email:     "rahim@example.com",
		Phone:     "01700000000",
		Password:  "secret",
		Balance:   5000,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"phone": "01700000000", "password": "secret"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.getByPhoneFn = func(ctx context.Context, phone string) (user.User, error) {
					return stored, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "user_not_found",
			body: `{"phone": "01999999999", "password": "secret"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.getByPhoneFn = func(ctx context.Context, phone string) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "wrong_password",
			body: `{"phone": "01700000000", "password": "nope"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.getByPhoneFn = func(ctx context.Context, phone string) (user.User, error) {
					return stored, nil
				}
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "validation_error",
			body:           `{"phone": ""}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"phone": "01700000000", "password": "secret"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.getByPhoneFn = func(ctx context.Context, phone string) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeUsersRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewUsersHandler(fakeRepo)

			r := setupRouter(http.MethodPost, "/login", h.Login)

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
