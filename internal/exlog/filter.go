package exlog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fitstack/fitlog/internal/domain/user"
)

var ErrInvalidDate = errors.New("invalid date")

const dateLayout = "2006-01-02"

// with pointers if optional, it will be nil
type Filter struct {
	From  *time.Time
	To    *time.Time
	Limit *int
}

// ParseFilter turns the raw from/to/limit query strings into a typed Filter.
// Empty strings mean unbounded. A date that does not parse is an error; a limit
// that does not parse is silently treated as "no limit", matching the long-standing
// behavior of the log endpoint.
func ParseFilter(from, to, limit string) (Filter, error) {
	var f Filter

	if strings.TrimSpace(from) != "" {
		t, err := ParseDate(from)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: from=%q", ErrInvalidDate, from)
		}
		f.From = &t
	}

	if strings.TrimSpace(to) != "" {
		t, err := ParseDate(to)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: to=%q", ErrInvalidDate, to)
		}
		f.To = &t
	}

	if strings.TrimSpace(limit) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(limit))
		if err == nil && n >= 0 {
			f.Limit = &n
		}
	}

	return f, nil
}

// ParseDate accepts a plain calendar date, falling back to a full RFC 3339
// timestamp. Plain dates resolve to midnight UTC, same as the storage format.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	t, err := time.Parse(dateLayout, raw)
	if err == nil {
		return t, nil
	}

	// some clients send full timestamps
	return time.Parse(time.RFC3339, raw)
}

// Predicate is a boolean test over a single log entry.
type Predicate func(user.LogEntry) bool

// Predicate builds the entry test for the filter: each present bound contributes
// one inclusive clause, clauses are AND-combined. With no bounds every entry
// passes. Comparison is on the stored instant, not the display date.
func (f Filter) Predicate() Predicate {
	var clauses []Predicate

	if f.From != nil {
		from := *f.From
		clauses = append(clauses, func(e user.LogEntry) bool {
			return !e.Date.Before(from)
		})
	}

	if f.To != nil {
		to := *f.To
		clauses = append(clauses, func(e user.LogEntry) bool {
			return !e.Date.After(to)
		})
	}

	return func(e user.LogEntry) bool {
		for _, clause := range clauses {
			if !clause(e) {
				return false
			}
		}
		return true
	}
}
