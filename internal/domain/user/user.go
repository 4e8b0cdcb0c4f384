package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// LogEntry is one exercise record. Entries are append-only: once written they are
// never edited, removed or reordered.
type LogEntry struct {
	Description string    `json:"description"`
	Duration    int       `json:"duration"` // minutes
	Date        time.Time `json:"date"`
}

type User struct {
	ID       string     `json:"_id"`
	Username string     `json:"username"`
	Log      []LogEntry `json:"log"`
}

// Count is derived from the log, never stored.
func (u User) Count() int {
	return len(u.Log)
}

var ErrNotFound = errors.New("user not found")

type CreateUserRequest struct {
	Username string `form:"username" json:"username" binding:"required,min=1,max=80"`
}

type AddExerciseRequest struct {
	UserID      string `form:"userId" json:"userId" binding:"required"`
	Description string `form:"description" json:"description" binding:"required,max=300"`
	Duration    int    `form:"duration" json:"duration" binding:"min=0"`
	Date        string `form:"date" json:"date" binding:"omitempty"`
}

// A factory to build a User from the incoming DTO

func NewFromCreateRequest(req CreateUserRequest) User {
	return User{
		ID:       uuid.NewString(),
		Username: req.Username,
		Log:      []LogEntry{},
	}
}

// NewLogEntry resolves the entry date: an absent date means "now" at append time.
func NewLogEntry(description string, duration int, date *time.Time) LogEntry {
	at := time.Now()
	if date != nil {
		at = *date
	}

	return LogEntry{
		Description: description,
		Duration:    duration,
		Date:        at,
	}
}
