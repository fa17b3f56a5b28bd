package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"journal/internal/domain"
)

const entryColumns = "id, user_id, entry_date, content, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.Entry, error) {
	var (
		e       domain.Entry
		date    time.Time
		content []byte
	)
	if err := row.Scan(&e.ID, &e.UserID, &date, &content, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Date = date.Format(domain.DayLayout)
	e.Content = json.RawMessage(content)
	return &e, nil
}

func (d *DB) queryEntries(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// UpsertEntry creates the entry for the day or replaces its content.
func (d *DB) UpsertEntry(ctx context.Context, userID int64, date time.Time, content json.RawMessage) (*domain.Entry, error) {
	return scanEntry(d.sql.QueryRowContext(ctx,
		`INSERT INTO journal_entries (user_id, entry_date, content, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (user_id, entry_date) DO UPDATE SET content = EXCLUDED.content, updated_at = now()
		RETURNING `+entryColumns,
		userID, day(date), string(content),
	))
}

// GetEntry returns the entry for the day, or nil.
func (d *DB) GetEntry(ctx context.Context, userID int64, date time.Time) (*domain.Entry, error) {
	e, err := scanEntry(d.sql.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM journal_entries WHERE user_id = $1 AND entry_date = $2",
		userID, day(date),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// ListEntriesBetween returns entries within [start, end], oldest first.
func (d *DB) ListEntriesBetween(ctx context.Context, userID int64, start, end time.Time) ([]domain.Entry, error) {
	return d.queryEntries(ctx,
		"SELECT "+entryColumns+" FROM journal_entries WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3 ORDER BY entry_date",
		userID, day(start), day(end),
	)
}

// ListEntriesOnDay returns entries written on month/day of any year, oldest first.
func (d *DB) ListEntriesOnDay(ctx context.Context, userID int64, month time.Month, dom int) ([]domain.Entry, error) {
	return d.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM journal_entries
		WHERE user_id = $1 AND EXTRACT(MONTH FROM entry_date) = $2 AND EXTRACT(DAY FROM entry_date) = $3
		ORDER BY entry_date`,
		userID, int(month), dom,
	)
}

// DeleteEntry removes the entry for the day and reports whether one existed.
func (d *DB) DeleteEntry(ctx context.Context, userID int64, date time.Time) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		"DELETE FROM journal_entries WHERE user_id = $1 AND entry_date = $2",
		userID, day(date),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountEntries returns how many entries the user has written.
func (d *DB) CountEntries(ctx context.Context, userID int64) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM journal_entries WHERE user_id = $1", userID).Scan(&n)
	return n, err
}
