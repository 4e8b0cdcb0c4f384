package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fitstack/fitlog/internal/cache"
	"github.com/fitstack/fitlog/internal/domain/user"
	"github.com/fitstack/fitlog/internal/exlog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ExerciseStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	AppendExercise(ctx context.Context, id string, entry user.LogEntry) (user.User, error)
}

type ExercisesHandler struct {
	repo  ExerciseStore
	cache cache.Store
}

func NewExercisesHandler(repo ExerciseStore) *ExercisesHandler {
	return &ExercisesHandler{repo: repo}
}

func NewExercisesHandlerWithCache(repo ExerciseStore, store cache.Store) *ExercisesHandler {
	return &ExercisesHandler{repo: repo, cache: store}
}

func (h *ExercisesHandler) AddExercise(ctx *gin.Context) {
	var req user.AddExerciseRequest

	if !Bind(ctx, &req) {
		return
	}

	if uuid.Validate(req.UserID) != nil {
		RespondNotFound(ctx, "User '"+req.UserID+"' not found")
		return
	}

	// empty date means "now"; a supplied one must parse
	var at *time.Time
	if strings.TrimSpace(req.Date) != "" {
		t, err := exlog.ParseDate(req.Date)
		if err != nil {
			RespondBadRequest(ctx, "date must be a valid date", nil)
			return
		}
		at = &t
	}

	entry := user.NewLogEntry(req.Description, req.Duration, at)

	u, err := h.repo.AppendExercise(ctx.Request.Context(), req.UserID, entry)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User '"+req.UserID+"' not found")
			return
		}
		RespondInternal(ctx, "Could not add exercise")
		return
	}

	if h.cache != nil {
		_ = h.cache.Delete(ctx.Request.Context(), usersCacheKey)
	}

	// the confirmation is rendered only after the write is durable
	ctx.JSON(http.StatusOK, exlog.NewConfirmation(u, entry))
}

func (h *ExercisesHandler) GetLog(ctx *gin.Context) {
	userID := ctx.Query("userId")

	if uuid.Validate(userID) != nil {
		RespondNotFound(ctx, "User '"+userID+"' not found")
		return
	}

	filter, err := exlog.ParseFilter(ctx.Query("from"), ctx.Query("to"), ctx.Query("limit"))

	if err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	u, err := h.repo.GetByID(ctx.Request.Context(), userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User '"+userID+"' not found")
			return
		}
		RespondInternal(ctx, "Could not query exercise log")
		return
	}

	// single-user contract: one identity in, one projected view out
	RespondJSONWithETag(ctx, http.StatusOK, exlog.Project(u, filter))
}
