package domain

import (
	"context"
	"time"
)

// StreakState is the persisted streak record of a user.
type StreakState struct {
	CurrentStreak     int        `json:"currentStreak"`
	CurrentStreakDate *time.Time `json:"currentStreakDate"`
	BestStreak        int        `json:"bestStreak"`
}

// CompletionSample is one month's ratio of entries to days.
type CompletionSample struct {
	Month      string  `json:"month"`
	Completion float64 `json:"completion"`
	Entries    int     `json:"entries"`
	Days       int     `json:"days"`
}

// ProgressData is everything persisted about a user's progress.
type ProgressData struct {
	StreakState
	CompletionSamples []CompletionSample
}

// ProgressStats is the consolidated, derived view of a user's progress. It is
// recomputed on every read.
type ProgressStats struct {
	CurrentStreak     int                `json:"currentStreak"`
	BestStreak        int                `json:"bestStreak"`
	CurrentStreakDate *string            `json:"currentStreakDate"`
	YearCompletion    float64            `json:"yearCompletion"`
	YearEntries       int                `json:"yearEntries"`
	YearDays          int                `json:"yearDays"`
	YearStartDate     *string            `json:"yearStartDate"`
	CompletionSamples []CompletionSample `json:"completionSamples"`
	StreakTier        Tier               `json:"streakTier"`
	CompletionTier    Tier               `json:"completionTier"`
	TierCombination   string             `json:"tierCombination"`
}

// ProgressRepository is the port the progress engine reads from and writes to.
// Lookups for a user without a profile record return nil with no error.
type ProgressRepository interface {
	// ListEntryDates returns every entry day of the user, newest first.
	ListEntryDates(ctx context.Context, userID int64) ([]time.Time, error)
	GetStreakState(ctx context.Context, userID int64) (*StreakState, error)
	// UpdateStreakState stores the streak in one statement. The stored best
	// streak never decreases.
	UpdateStreakState(ctx context.Context, userID int64, state StreakState) error
	MonthEntryCount(ctx context.Context, userID int64, year int, month time.Month) (int, error)
	// FirstEntryDate returns the user's oldest entry day, or nil.
	FirstEntryDate(ctx context.Context, userID int64) (*time.Time, error)
	YearEntryCount(ctx context.Context, userID int64, year int) (int, error)
	GetCompletionSamples(ctx context.Context, userID int64) ([]CompletionSample, error)
	// ReplaceCompletionSamples overwrites the stored samples.
	ReplaceCompletionSamples(ctx context.Context, userID int64, samples []CompletionSample) error
	GetProgressData(ctx context.Context, userID int64) (*ProgressData, error)
}
