package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitstack/fitlog/internal/domain/user"
	"github.com/fitstack/fitlog/internal/http/handlers"
	"github.com/google/uuid"
)

func logDay(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestAddExerciseHandler(t *testing.T) {
	validID := uuid.NewString()
	missingID := uuid.NewString()

	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: "userId=" + validID + "&description=run&duration=30",
			repoSetUp: func(f *fakeUsersRepo) {
				f.appendFn = func(ctx context.Context, id string, entry user.LogEntry) (user.User, error) {
					return user.User{ID: id, Username: "alice", Log: []user.LogEntry{entry}}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "explicit_date",
			body: "userId=" + validID + "&description=swim&duration=45&date=2025-03-03",
			repoSetUp: func(f *fakeUsersRepo) {
				f.appendFn = func(ctx context.Context, id string, entry user.LogEntry) (user.User, error) {
					if !entry.Date.Equal(logDay(3)) {
						return user.User{}, errors.New("date not passed through")
					}
					return user.User{ID: id, Username: "alice", Log: []user.LogEntry{entry}}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_description",
			body:           "userId=" + validID + "&duration=30",
			repoSetUp:      func(f *fakeUsersRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "bad_date",
			body:           "userId=" + validID + "&description=run&duration=30&date=soon",
			repoSetUp:      func(f *fakeUsersRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "malformed_user_id",
			body:           "userId=not-a-uuid&description=run&duration=30",
			repoSetUp:      func(f *fakeUsersRepo) {},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "unknown_user",
			body: "userId=" + missingID + "&description=run&duration=30",
			repoSetUp: func(f *fakeUsersRepo) {
				f.appendFn = func(ctx context.Context, id string, entry user.LogEntry) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			body: "userId=" + validID + "&description=run&duration=30",
			repoSetUp: func(f *fakeUsersRepo) {
				f.appendFn = func(ctx context.Context, id string, entry user.LogEntry) (user.User, error) {
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

			if tt.repoSetUp != nil {
				tt.repoSetUp(fakeRepo)
			}

			h := handlers.NewExercisesHandler(fakeRepo)
			r := setupRouter(http.MethodPost, "/api/exercise/add", h.AddExercise)

			w := postForm(r, "/api/exercise/add", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestAddExerciseConfirmationShape(t *testing.T) {
	validID := uuid.NewString()

	fakeRepo := &fakeUsersRepo{
		appendFn: func(ctx context.Context, id string, entry user.LogEntry) (user.User, error) {
			return user.User{ID: id, Username: "alice", Log: []user.LogEntry{entry}}, nil
		},
	}

	h := handlers.NewExercisesHandler(fakeRepo)
	r := setupRouter(http.MethodPost, "/api/exercise/add", h.AddExercise)

	w := postForm(r, "/api/exercise/add", "userId="+validID+"&description=run&duration=30")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		ID          string `json:"_id"`
		Username    string `json:"username"`
		Description string `json:"description"`
		Duration    int    `json:"duration"`
		Date        string `json:"date"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.ID != validID || resp.Username != "alice" || resp.Description != "run" || resp.Duration != 30 {
		t.Fatalf("confirmation fields wrong: %+v", resp)
	}
	if resp.Date == "" {
		t.Fatalf("confirmation must carry a calendar-day date")
	}
}

func TestGetLogHandler(t *testing.T) {
	validID := uuid.NewString()
	missingID := uuid.NewString()

	stored := user.User{
		ID:       validID,
		Username: "alice",
		Log: []user.LogEntry{
			{Description: "run", Duration: 30, Date: logDay(1)},
			{Description: "swim", Duration: 45, Date: logDay(3)},
			{Description: "lift", Duration: 20, Date: logDay(5)},
		},
	}

	withUser := func(f *fakeUsersRepo) {
		f.getFn = func(ctx context.Context, id string) (user.User, error) {
			if id != validID {
				return user.User{}, user.ErrNotFound
			}
			return stored, nil
		}
	}

	tests := []struct {
		name           string
		url            string
		repoSetUp      func(*fakeUsersRepo)
		wantStatusCode int
		wantLog        []string
	}{
		{
			name:           "full_log",
			url:            "/api/exercise/log?userId=" + validID,
			repoSetUp:      withUser,
			wantStatusCode: http.StatusOK,
			wantLog:        []string{"run", "swim", "lift"},
		},
		{
			name:           "window_keeps_middle_entry",
			url:            "/api/exercise/log?userId=" + validID + "&from=2025-03-02&to=2025-03-04",
			repoSetUp:      withUser,
			wantStatusCode: http.StatusOK,
			wantLog:        []string{"swim"},
		},
		{
			name:           "limit_keeps_prefix",
			url:            "/api/exercise/log?userId=" + validID + "&limit=2",
			repoSetUp:      withUser,
			wantStatusCode: http.StatusOK,
			wantLog:        []string{"run", "swim"},
		},
		{
			name:           "garbage_limit_means_unbounded",
			url:            "/api/exercise/log?userId=" + validID + "&limit=lots",
			repoSetUp:      withUser,
			wantStatusCode: http.StatusOK,
			wantLog:        []string{"run", "swim", "lift"},
		},
		{
			name:           "bad_from_date",
			url:            "/api/exercise/log?userId=" + validID + "&from=whenever",
			repoSetUp:      withUser,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "unknown_user",
			url:            "/api/exercise/log?userId=" + missingID,
			repoSetUp:      withUser,
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "malformed_user_id",
			url:            "/api/exercise/log?userId=42",
			repoSetUp:      func(f *fakeUsersRepo) {},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeUsersRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(fakeRepo)
			}

			h := handlers.NewExercisesHandler(fakeRepo)
			r := setupRouter(http.MethodGet, "/api/exercise/log", h.GetLog)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var resp struct {
				Count int `json:"count"`
				Log   []struct {
					Description string `json:"description"`
					Date        string `json:"date"`
				} `json:"log"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if resp.Count != len(resp.Log) {
				t.Fatalf("count %d does not match log length %d", resp.Count, len(resp.Log))
			}

			if len(resp.Log) != len(tt.wantLog) {
				t.Fatalf("log length: got %d want %d, body=%s", len(resp.Log), len(tt.wantLog), w.Body.String())
			}

			for i, e := range resp.Log {
				if e.Description != tt.wantLog[i] {
					t.Fatalf("entry %d: got %q want %q", i, e.Description, tt.wantLog[i])
				}
				if e.Date == "" {
					t.Fatalf("entry %d has no rendered date", i)
				}
			}
		})
	}
}

func TestGetLogIsIdempotent(t *testing.T) {
	validID := uuid.NewString()

	fakeRepo := &fakeUsersRepo{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{
				ID:       validID,
				Username: "alice",
				Log: []user.LogEntry{
					{Description: "run", Duration: 30, Date: logDay(1)},
				},
			}, nil
		},
	}

	h := handlers.NewExercisesHandler(fakeRepo)
	r := setupRouter(http.MethodGet, "/api/exercise/log", h.GetLog)

	url := "/api/exercise/log?userId=" + validID + "&from=2025-03-01&limit=5"

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, url, nil))

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, url, nil))

	if w1.Code != http.StatusOK || w2.Code != http.StatusOK {
		t.Fatalf("statuses: %d, %d", w1.Code, w2.Code)
	}

	if w1.Body.String() != w2.Body.String() {
		t.Fatalf("identical queries produced different bodies:\n%s\n%s", w1.Body.String(), w2.Body.String())
	}
}
