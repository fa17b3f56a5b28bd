package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"journal/internal/domain"
)

// ListEntryDates returns every entry day of the user, newest first.
func (d *DB) ListEntryDates(ctx context.Context, userID int64) ([]time.Time, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT entry_date FROM journal_entries WHERE user_id = $1 ORDER BY entry_date DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, domain.DayOf(t))
	}
	return out, rows.Err()
}

// GetStreakState returns the stored streak, or nil for an unknown user.
func (d *DB) GetStreakState(ctx context.Context, userID int64) (*domain.StreakState, error) {
	var st domain.StreakState
	err := d.sql.QueryRowContext(ctx,
		"SELECT current_streak, current_streak_date, best_streak FROM users WHERE id = $1",
		userID,
	).Scan(&st.CurrentStreak, &st.CurrentStreakDate, &st.BestStreak)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateStreakState stores the streak. GREATEST keeps the best streak from
// regressing under concurrent writers.
func (d *DB) UpdateStreakState(ctx context.Context, userID int64, st domain.StreakState) error {
	var date any
	if st.CurrentStreakDate != nil {
		date = day(*st.CurrentStreakDate)
	}
	_, err := d.sql.ExecContext(ctx,
		`UPDATE users
		SET current_streak = $2, current_streak_date = $3, best_streak = GREATEST(best_streak, $4)
		WHERE id = $1`,
		userID, st.CurrentStreak, date, st.BestStreak,
	)
	return err
}

// MonthEntryCount counts the user's entries in the given month.
func (d *DB) MonthEntryCount(ctx context.Context, userID int64, year int, month time.Month) (int, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return d.countBetween(ctx, userID, start, start.AddDate(0, 1, 0))
}

// YearEntryCount counts the user's entries in the given calendar year.
func (d *DB) YearEntryCount(ctx context.Context, userID int64, year int) (int, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return d.countBetween(ctx, userID, start, start.AddDate(1, 0, 0))
}

func (d *DB) countBetween(ctx context.Context, userID int64, from, until time.Time) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM journal_entries WHERE user_id = $1 AND entry_date >= $2 AND entry_date < $3",
		userID, day(from), day(until),
	).Scan(&n)
	return n, err
}

// FirstEntryDate returns the user's oldest entry day, or nil.
func (d *DB) FirstEntryDate(ctx context.Context, userID int64) (*time.Time, error) {
	var first sql.NullTime
	err := d.sql.QueryRowContext(ctx,
		"SELECT MIN(entry_date) FROM journal_entries WHERE user_id = $1",
		userID,
	).Scan(&first)
	if err != nil || !first.Valid {
		return nil, err
	}
	t := domain.DayOf(first.Time)
	return &t, nil
}

// GetCompletionSamples returns the stored monthly samples, or nil for an unknown user.
func (d *DB) GetCompletionSamples(ctx context.Context, userID int64) ([]domain.CompletionSample, error) {
	var raw []byte
	err := d.sql.QueryRowContext(ctx, "SELECT completion_samples FROM users WHERE id = $1", userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSamples(raw)
}

// ReplaceCompletionSamples overwrites the stored monthly samples.
func (d *DB) ReplaceCompletionSamples(ctx context.Context, userID int64, samples []domain.CompletionSample) error {
	if samples == nil {
		samples = []domain.CompletionSample{}
	}
	raw, err := json.Marshal(samples)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx, "UPDATE users SET completion_samples = $2 WHERE id = $1", userID, string(raw))
	return err
}

// GetProgressData returns the persisted progress record, or nil for an unknown user.
func (d *DB) GetProgressData(ctx context.Context, userID int64) (*domain.ProgressData, error) {
	var (
		pd  domain.ProgressData
		raw []byte
	)
	err := d.sql.QueryRowContext(ctx,
		"SELECT current_streak, current_streak_date, best_streak, completion_samples FROM users WHERE id = $1",
		userID,
	).Scan(&pd.CurrentStreak, &pd.CurrentStreakDate, &pd.BestStreak, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if pd.CompletionSamples, err = decodeSamples(raw); err != nil {
		return nil, err
	}
	return &pd, nil
}

func decodeSamples(raw []byte) ([]domain.CompletionSample, error) {
	samples := []domain.CompletionSample{}
	if len(raw) == 0 {
		return samples, nil
	}
	if err := json.Unmarshal(raw, &samples); err != nil {
		return nil, fmt.Errorf("decode completion samples: %w", err)
	}
	return samples, nil
}
