package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bkbadhon/elearning/internal/config"
	"github.com/bkbadhon/elearning/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UsersStore interface {
	Create(ctx context.Context, u user.User) error
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByPhone(ctx context.Context, phone string) (user.User, error)
}

type UsersHandler struct {
	users UsersStore
}

func NewUsersHandler(users UsersStore) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// pre-check keeps the common duplicate path off the insert; the unique
	// index on email still backstops concurrent registrations
	_, err := h.users.GetByEmail(cctx, req.Email)

	if err == nil {
		RespondConflict(ctx, "email_taken", "Email is already in use.")
		return
	}

	if !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u := user.NewFromRegisterRequest(req)

	err = h.users.Create(cctx, u)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"result":  u,
	})
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	u, err := h.users.GetByPhone(cctx, req.Phone)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	// upstream contract stores and compares passwords verbatim
	if u.Password != req.Password {
		RespondUnAuthorized(ctx, "invalid_credentials", "Incorrect password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    u,
	})
}
