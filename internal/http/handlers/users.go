package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/fitstack/fitlog/internal/cache"
	"github.com/fitstack/fitlog/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const usersCacheKey = "users:all"

type UsersDirectory interface {
	Create(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	ListAll(ctx context.Context) ([]user.User, error)
}

type UsersHandler struct {
	repo     UsersDirectory
	cache    cache.Store
	cacheTTL time.Duration
}

func NewUsersHandler(repo UsersDirectory) *UsersHandler {
	return &UsersHandler{repo: repo}
}

func NewUsersHandlerWithCache(repo UsersDirectory, store cache.Store, ttl time.Duration) *UsersHandler {
	return &UsersHandler{repo: repo, cache: store, cacheTTL: ttl}
}

// userPayload is the directory view of a user: the count field is derived from
// the log on every render, never read from storage.
type userPayload struct {
	ID       string          `json:"_id"`
	Username string          `json:"username"`
	Count    int             `json:"count"`
	Log      []user.LogEntry `json:"log"`
}

func toPayload(u user.User) userPayload {
	return userPayload{
		ID:       u.ID,
		Username: u.Username,
		Count:    u.Count(),
		Log:      u.Log,
	}
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !Bind(ctx, &req) {
		return
	}

	u, err := h.repo.Create(ctx.Request.Context(), req)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	h.invalidate(ctx.Request.Context())

	ctx.JSON(http.StatusCreated, toPayload(u))
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	// bulk dump: no pagination, no filtering
	if h.cache != nil {
		var cached []userPayload
		ok, err := h.cache.GetJSON(ctx.Request.Context(), usersCacheKey, &cached)
		if err == nil && ok {
			RespondJSONWithETag(ctx, http.StatusOK, cached)
			return
		}
	}

	users, err := h.repo.ListAll(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	out := make([]userPayload, 0, len(users))
	for _, u := range users {
		out = append(out, toPayload(u))
	}

	if h.cache != nil {
		_ = h.cache.SetJSON(ctx.Request.Context(), usersCacheKey, out, h.cacheTTL)
	}

	RespondJSONWithETag(ctx, http.StatusOK, out)
}

func (h *UsersHandler) invalidate(ctx context.Context) {
	if h.cache != nil {
		_ = h.cache.Delete(ctx, usersCacheKey)
	}
}
