package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"journal/internal/domain"
)

const messageColumns = "id, message_text, context, tone, length, is_active, created_at"

const messageStatsQuery = `
SELECT
	m.id, m.message_text, m.context, m.tone, m.length, m.is_active, m.created_at,
	COUNT(DISTINCT mi.id),
	COUNT(DISTINCT CASE WHEN mi.user_state = 'new_visitor' AND mi.outcome = 'registered' THEN mi.id END),
	COUNT(DISTINCT CASE WHEN mi.user_state = 'new_visitor' AND mi.outcome = 'left' THEN mi.id END),
	COUNT(DISTINCT CASE WHEN mi.user_state = 'no_entries' AND mi.outcome = 'wrote_first_entry' THEN mi.id END),
	COUNT(DISTINCT CASE WHEN mi.user_state = 'no_entries' AND mi.outcome = 'left' THEN mi.id END),
	COUNT(DISTINCT CASE WHEN mi.user_state = 'has_entries' AND mi.outcome = 'wrote_entry' THEN mi.id END),
	COUNT(DISTINCT CASE WHEN mi.user_state = 'has_entries' AND mi.outcome = 'left' THEN mi.id END)
FROM motivational_messages m
LEFT JOIN message_interactions mi ON m.id = mi.message_id
`

func scanMessage(row rowScanner) (*domain.Message, error) {
	var m domain.Message
	if err := row.Scan(&m.ID, &m.Text, &m.Context, &m.Tone, &m.Length, &m.IsActive, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMessageStats(row rowScanner) (*domain.MessageStats, error) {
	var s domain.MessageStats
	err := row.Scan(
		&s.ID, &s.Text, &s.Context, &s.Tone, &s.Length, &s.IsActive, &s.CreatedAt,
		&s.TotalViews,
		&s.NewUserRegistered, &s.NewUserLeft,
		&s.FirstEntryWritten, &s.NoEntriesLeft,
		&s.ExistingUserWrote, &s.ExistingUserLeft,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RandomActiveMessage returns a random active message for page or "both", or nil.
func (d *DB) RandomActiveMessage(ctx context.Context, page string) (*domain.Message, error) {
	m, err := scanMessage(d.sql.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM motivational_messages
		WHERE is_active AND (context = $1 OR context = 'both')
		ORDER BY RANDOM() LIMIT 1`,
		page,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// CreateMessage inserts a message into the bank.
func (d *DB) CreateMessage(ctx context.Context, m domain.Message) (*domain.Message, error) {
	return scanMessage(d.sql.QueryRowContext(ctx,
		`INSERT INTO motivational_messages (message_text, context, tone, length, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+messageColumns,
		m.Text, m.Context, m.Tone, m.Length, m.IsActive, m.CreatedAt,
	))
}

// UpdateMessage applies the non-nil fields of patch. It returns nil when the
// message does not exist.
func (d *DB) UpdateMessage(ctx context.Context, id int64, patch domain.MessagePatch) (*domain.Message, error) {
	m, err := scanMessage(d.sql.QueryRowContext(ctx,
		`UPDATE motivational_messages SET
			message_text = COALESCE($2, message_text),
			context = COALESCE($3, context),
			tone = COALESCE($4, tone),
			length = COALESCE($5, length),
			is_active = COALESCE($6, is_active)
		WHERE id = $1
		RETURNING `+messageColumns,
		id, patch.Text, patch.Context, patch.Tone, patch.Length, patch.IsActive,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// DeleteMessage removes a message; its interactions cascade.
func (d *DB) DeleteMessage(ctx context.Context, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM motivational_messages WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListMessageStats returns every message with its engagement counts, newest first.
func (d *DB) ListMessageStats(ctx context.Context) ([]domain.MessageStats, error) {
	rows, err := d.sql.QueryContext(ctx, messageStatsQuery+"GROUP BY m.id ORDER BY m.created_at DESC, m.id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.MessageStats, 0)
	for rows.Next() {
		s, err := scanMessageStats(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// GetMessageStats returns the engagement counts of one message, or nil.
func (d *DB) GetMessageStats(ctx context.Context, id int64) (*domain.MessageStats, error) {
	s, err := scanMessageStats(d.sql.QueryRowContext(ctx, messageStatsQuery+"WHERE m.id = $1 GROUP BY m.id", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// FindInteraction returns the interaction recorded for the session, message
// and page, or nil.
func (d *DB) FindInteraction(ctx context.Context, sessionID string, messageID int64, page string) (*domain.Interaction, error) {
	var in domain.Interaction
	err := d.sql.QueryRowContext(ctx,
		`SELECT id, message_id, user_id, session_id, context, user_state, outcome, created_at, completed_at
		FROM message_interactions
		WHERE session_id = $1 AND message_id = $2 AND context = $3
		ORDER BY id LIMIT 1`,
		sessionID, messageID, page,
	).Scan(&in.ID, &in.MessageID, &in.UserID, &in.SessionID, &in.Context, &in.UserState, &in.Outcome, &in.CreatedAt, &in.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// CreateInteraction records a message view and returns its ID.
func (d *DB) CreateInteraction(ctx context.Context, in domain.Interaction) (int64, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		`INSERT INTO message_interactions (message_id, user_id, session_id, context, user_state, outcome, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		in.MessageID, in.UserID, in.SessionID, in.Context, in.UserState, in.Outcome, in.CreatedAt, in.CompletedAt,
	).Scan(&id)
	return id, err
}

// CompleteInteraction stores the outcome of an earlier view. A nil userID
// keeps the recorded one.
func (d *DB) CompleteInteraction(ctx context.Context, id int64, outcome string, userID *int64, at time.Time) error {
	_, err := d.sql.ExecContext(ctx,
		"UPDATE message_interactions SET outcome = $2, user_id = COALESCE($3, user_id), completed_at = $4 WHERE id = $1",
		id, outcome, userID, at,
	)
	return err
}

// SiteStats counts non-admin users and their activity since the given time.
func (d *DB) SiteStats(ctx context.Context, since time.Time) (*domain.SiteStats, error) {
	var s domain.SiteStats
	err := d.sql.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role <> 'admin'),
			(SELECT COUNT(DISTINCT je.user_id) FROM journal_entries je
				JOIN users u ON u.id = je.user_id
				WHERE u.role <> 'admin' AND je.updated_at >= $1),
			(SELECT COUNT(*) FROM journal_entries je
				JOIN users u ON u.id = je.user_id
				WHERE u.role <> 'admin' AND je.created_at >= $1)`,
		since,
	).Scan(&s.TotalUsers, &s.ActiveUsers30Days, &s.Entries30Days)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
