package domain

import (
	"context"
	"encoding/json"
	"time"
)

// DayLayout is the wire and storage format of a calendar day.
const DayLayout = "2006-01-02"

// Entry is a single journal entry. A user has at most one entry per day.
type Entry struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Date      string          `json:"date"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// EntryRepository is the port for journal entry persistence.
type EntryRepository interface {
	// UpsertEntry creates the entry for (userID, day) or replaces its content.
	UpsertEntry(ctx context.Context, userID int64, day time.Time, content json.RawMessage) (*Entry, error)
	GetEntry(ctx context.Context, userID int64, day time.Time) (*Entry, error)
	// ListEntriesBetween returns entries with start <= date <= end, oldest first.
	ListEntriesBetween(ctx context.Context, userID int64, start, end time.Time) ([]Entry, error)
	// ListEntriesOnDay returns entries written on month/day in any year, oldest first.
	ListEntriesOnDay(ctx context.Context, userID int64, month time.Month, day int) ([]Entry, error)
	DeleteEntry(ctx context.Context, userID int64, day time.Time) (bool, error)
	CountEntries(ctx context.Context, userID int64) (int, error)
}

// ParseDay parses a YYYY-MM-DD string into a normalized day.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}
