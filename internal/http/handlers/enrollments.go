package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bkbadhon/elearning/internal/config"
	"github.com/bkbadhon/elearning/internal/domain/course"
	"github.com/bkbadhon/elearning/internal/domain/enrollment"
	"github.com/bkbadhon/elearning/internal/domain/job"
	"github.com/bkbadhon/elearning/internal/domain/user"
	"github.com/bkbadhon/elearning/internal/jobs"
	"github.com/bkbadhon/elearning/internal/repo/postgres"
	"github.com/bkbadhon/elearning/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type EnrollmentsStore interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	EnrollTx(ctx context.Context, tx pgx.Tx, userID, courseID string) (enrollment.Result, error)
	ListByUser(ctx context.Context, userID string) ([]enrollment.Enrollment, error)
	ListByUserCursor(ctx context.Context, userID string, limit int, afterCreatedAt time.Time, afterID string) ([]enrollment.Enrollment, *string, bool, error)
}

type JobsCreator interface {
	CreateTx(ctx context.Context, tx pgx.Tx, req job.CreateRequest) (job.Job, error)
}

type EnrollmentsHandler struct {
	repo     EnrollmentsStore
	jobsRepo JobsCreator
}

func NewEnrollmentsHandler(repo EnrollmentsStore, jobsRepo JobsCreator) *EnrollmentsHandler {
	return &EnrollmentsHandler{repo: repo, jobsRepo: jobsRepo}
}

func (h *EnrollmentsHandler) Enroll(ctx *gin.Context) {
	var req enrollment.EnrollRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	tx, err := h.repo.BeginTx(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not enroll")
		return
	}

	defer func() { _ = tx.Rollback(cctx) }()

	res, err := h.repo.EnrollTx(cctx, tx, req.UserID, req.CourseID)

	if err != nil {
		var insufficient *enrollment.InsufficientFundsError

		switch {
		case errors.Is(err, user.ErrNotFound), errors.Is(err, course.ErrNotFound):
			RespondNotFound(ctx, "User or Course not found")
		case errors.As(err, &insufficient):
			RespondError(ctx, http.StatusBadRequest, "insufficient_balance",
				fmt.Sprintf("You need %d more balance to enroll in this course.", insufficient.Shortfall), nil)
		default:
			RespondInternal(ctx, "Could not enroll")
		}
		return
	}

	payload := jobs.EnrollmentConfirmationPayload{
		EnrollmentID: res.Enrollment.ID,
		UserID:       res.Enrollment.UserID,
		CourseID:     res.Enrollment.CourseID,
		Email:        res.UserEmail,
		UserName:     res.Enrollment.UserName,
		CourseTitle:  res.Enrollment.CourseTitle,
		RequestedAt:  time.Now().UTC(),
	}

	raw, err := payload.JSON()

	if err != nil {
		RespondInternal(ctx, "Could not enroll")
		return
	}

	// idempotency key
	key := "enrollment:confirm:" + res.Enrollment.ID

	_, err = h.jobsRepo.CreateTx(cctx, tx, job.CreateRequest{
		Type:           string(jobs.JobEnrollmentConfirmation),
		Payload:        raw,
		RunAt:          time.Now().UTC(),
		MaxAttempts:    10,
		IdempotencyKey: &key,
	})

	if err != nil {
		// duplicate idempotency key inside the same tx is fine (rare, but safe)
		if !postgres.IsUniqueViolation(err) {
			RespondInternal(ctx, "Could not enroll")
			return
		}
	}

	// commit once: debit, snapshot and job all land together
	err = tx.Commit(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not enroll")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Enrolled successfully",
		"balance":    res.NewBalance,
		"enrollment": res.Enrollment,
	})
}

func (h *EnrollmentsHandler) ListForUser(ctx *gin.Context) {
	userID := ctx.Query("userId")

	if userID == "" {
		RespondBadRequest(ctx, "userId query parameter is required", nil)
		return
	}

	if err := uuid.Validate(userID); err != nil {
		RespondBadRequest(ctx, "userId must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	// clients that pass a limit opt in to the paginated shape
	if rawLimit := ctx.Query("limit"); rawLimit != "" {
		h.listPage(ctx, cctx, userID, rawLimit)
		return
	}

	enrollments, err := h.repo.ListByUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list enrollments")
		return
	}

	ctx.JSON(http.StatusOK, enrollments)
}

func (h *EnrollmentsHandler) listPage(ctx *gin.Context, cctx context.Context, userID, rawLimit string) {
	limit, err := strconv.Atoi(rawLimit)

	if err != nil || limit < 1 || limit > 100 {
		RespondBadRequest(ctx, "limit must be an integer between 1 and 100", nil)
		return
	}

	var afterCreatedAt time.Time
	var afterID string

	if rawCursor := ctx.Query("cursor"); rawCursor != "" {
		cur, err := utils.DecodeEnrollmentCursor(rawCursor)

		if err != nil {
			RespondBadRequest(ctx, "cursor is not valid", nil)
			return
		}

		afterCreatedAt = cur.CreatedAt
		afterID = cur.ID
	}

	items, nextCursor, hasMore, err := h.repo.ListByUserCursor(cctx, userID, limit, afterCreatedAt, afterID)

	if err != nil {
		RespondInternal(ctx, "Could not list enrollments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items":      items,
		"nextCursor": nextCursor,
		"hasMore":    hasMore,
	})
}
