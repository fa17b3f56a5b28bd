package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"journal/internal/domain"
)

// ErrEntryNotFound indicates there is no entry on the requested day.
var ErrEntryNotFound = errors.New("entry not found")

// EntryService encapsulates journal entry use cases.
type EntryService struct {
	repo     domain.EntryRepository
	progress *ProgressService
}

// NewEntryService creates an EntryService. Every write schedules a progress
// refresh on progress.
func NewEntryService(repo domain.EntryRepository, progress *ProgressService) *EntryService {
	return &EntryService{repo: repo, progress: progress}
}

func parseDay(s string) (time.Time, error) {
	d, err := domain.ParseDay(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	return d, nil
}

// Save creates or replaces the entry for date. content must be a JSON object.
// The response does not wait for the streak and completion updates.
func (s *EntryService) Save(ctx context.Context, userID int64, date string, content json.RawMessage) (*domain.Entry, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}
	content = bytes.TrimSpace(content)
	if len(content) == 0 || content[0] != '{' || !json.Valid(content) {
		return nil, fmt.Errorf("%w: content must be a JSON object", ErrValidation)
	}

	entry, err := s.repo.UpsertEntry(ctx, userID, day, content)
	if err != nil {
		return nil, err
	}
	s.progress.ScheduleRefresh(ctx, userID)
	return entry, nil
}

// Get returns the entry for date, or nil when there is none.
func (s *EntryService) Get(ctx context.Context, userID int64, date string) (*domain.Entry, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}
	return s.repo.GetEntry(ctx, userID, day)
}

// Range returns entries from start through end inclusive, oldest first.
func (s *EntryService) Range(ctx context.Context, userID int64, start, end string) ([]domain.Entry, error) {
	from, err := parseDay(start)
	if err != nil {
		return nil, err
	}
	to, err := parseDay(end)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrValidation)
	}
	return s.repo.ListEntriesBetween(ctx, userID, from, to)
}

// OnThisDay returns the entries written on month/day across all years.
func (s *EntryService) OnThisDay(ctx context.Context, userID int64, month, day int) ([]domain.Entry, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be within [1, 12]", ErrValidation)
	}
	if day < 1 || day > 31 {
		return nil, fmt.Errorf("%w: day must be within [1, 31]", ErrValidation)
	}
	return s.repo.ListEntriesOnDay(ctx, userID, time.Month(month), day)
}

// Delete removes the entry for date and refreshes progress.
func (s *EntryService) Delete(ctx context.Context, userID int64, date string) error {
	day, err := parseDay(date)
	if err != nil {
		return err
	}
	deleted, err := s.repo.DeleteEntry(ctx, userID, day)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrEntryNotFound
	}
	s.progress.ScheduleRefresh(ctx, userID)
	return nil
}
