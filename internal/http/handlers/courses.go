package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bkbadhon/elearning/internal/cache"
	"github.com/bkbadhon/elearning/internal/config"
	"github.com/bkbadhon/elearning/internal/domain/course"
	"github.com/gin-gonic/gin"
)

type CourseLister interface {
	List(ctx context.Context) ([]course.Course, error)
}

type CoursesHandler struct {
	repo  CourseLister
	cache *cache.CoursesCache
}

// cache may be nil; the handler then always reads through to postgres
func NewCoursesHandler(repo CourseLister, cache *cache.CoursesCache) *CoursesHandler {
	return &CoursesHandler{repo: repo, cache: cache}
}

func (h *CoursesHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	if courses, ok := h.cache.Get(cctx); ok {
		RespondJSONWithETag(ctx, http.StatusOK, courses)
		return
	}

	courses, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list courses")
		return
	}

	h.cache.Set(cctx, courses)

	RespondJSONWithETag(ctx, http.StatusOK, courses)
}
