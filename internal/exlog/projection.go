package exlog

import (
	"time"

	"github.com/fitstack/fitlog/internal/domain/user"
)

// calendar-day rendering, no time component
const dayLayout = "Mon Jan 02 2006"

type EntryView struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

type LogView struct {
	ID       string      `json:"_id"`
	Username string      `json:"username"`
	Count    int         `json:"count"`
	Log      []EntryView `json:"log"`
}

type Confirmation struct {
	ID          string `json:"_id"`
	Username    string `json:"username"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// Project applies the read-side pipeline in a fixed order: filter, then prefix
// limit, then calendar-day rendering. Relative order of surviving entries is the
// append order; the limit keeps the first N survivors, never the most recent N.
// Count is the surviving entry count, recomputed here on every call.
func Project(u user.User, f Filter) LogView {
	pred := f.Predicate()

	filtered := make([]user.LogEntry, 0, len(u.Log))
	for _, e := range u.Log {
		if pred(e) {
			filtered = append(filtered, e)
		}
	}

	if f.Limit != nil && *f.Limit < len(filtered) {
		filtered = filtered[:*f.Limit]
	}

	out := make([]EntryView, 0, len(filtered))
	for _, e := range filtered {
		out = append(out, EntryView{
			Description: e.Description,
			Duration:    e.Duration,
			Date:        e.Date.Format(dayLayout),
		})
	}

	return LogView{
		ID:       u.ID,
		Username: u.Username,
		Count:    len(out),
		Log:      out,
	}
}

// NewConfirmation builds the single-append confirmation payload. Its date goes
// through displayDate, NOT the plain truncation Project uses; the two paths have
// always disagreed and clients depend on both as-is.
func NewConfirmation(u user.User, e user.LogEntry) Confirmation {
	return Confirmation{
		ID:          u.ID,
		Username:    u.Username,
		Description: e.Description,
		Duration:    e.Duration,
		Date:        displayDate(e.Date),
	}
}

// displayDate shifts the stored instant forward by one hour minus the server's
// local UTC offset before truncating to a calendar day. This counteracts the
// day-boundary artifact on servers west of UTC, where an entry dated midnight
// UTC would otherwise render as the previous day.
func displayDate(t time.Time) string {
	_, offset := time.Now().Zone() // seconds east of UTC

	shift := time.Hour - time.Duration(offset)*time.Second

	return t.Add(shift).Format(dayLayout)
}
