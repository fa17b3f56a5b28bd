package memory

import (
	"context"
	"math/rand/v2"
	"slices"
	"time"

	"journal/internal/domain"
)

// --- MessageRepository ---

func (db *DB) message(id int64) *domain.Message {
	for _, m := range db.messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// RandomActiveMessage returns a random active message for page or "both", or nil.
func (db *DB) RandomActiveMessage(ctx context.Context, page string) (*domain.Message, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var candidates []*domain.Message
	for _, m := range db.messages {
		if m.IsActive && (m.Context == page || m.Context == domain.MessageContextBoth) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	c := *candidates[rand.IntN(len(candidates))]
	return &c, nil
}

// CreateMessage inserts a message into the bank.
func (db *DB) CreateMessage(ctx context.Context, m domain.Message) (*domain.Message, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.messageIDCounter++
	m.ID = db.messageIDCounter
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	stored := m
	db.messages = append(db.messages, &stored)
	return &m, nil
}

// UpdateMessage applies the non-nil fields of patch. It returns nil when the
// message does not exist.
func (db *DB) UpdateMessage(ctx context.Context, id int64, patch domain.MessagePatch) (*domain.Message, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	m := db.message(id)
	if m == nil {
		return nil, nil
	}
	if patch.Text != nil {
		m.Text = *patch.Text
	}
	if patch.Context != nil {
		m.Context = *patch.Context
	}
	if patch.Tone != nil {
		m.Tone = patch.Tone
	}
	if patch.Length != nil {
		m.Length = patch.Length
	}
	if patch.IsActive != nil {
		m.IsActive = *patch.IsActive
	}
	c := *m
	return &c, nil
}

// DeleteMessage removes a message and its interactions.
func (db *DB) DeleteMessage(ctx context.Context, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	n := len(db.messages)
	db.messages = slices.DeleteFunc(db.messages, func(m *domain.Message) bool { return m.ID == id })
	if len(db.messages) == n {
		return false, nil
	}
	db.interactions = slices.DeleteFunc(db.interactions, func(in *domain.Interaction) bool { return in.MessageID == id })
	return true, nil
}

func (db *DB) messageStats(m *domain.Message) domain.MessageStats {
	st := domain.MessageStats{Message: *m}
	for _, in := range db.interactions {
		if in.MessageID != m.ID {
			continue
		}
		st.TotalViews++
		if in.Outcome == nil {
			continue
		}
		switch in.UserState + "/" + *in.Outcome {
		case "new_visitor/registered":
			st.NewUserRegistered++
		case "new_visitor/left":
			st.NewUserLeft++
		case "no_entries/wrote_first_entry":
			st.FirstEntryWritten++
		case "no_entries/left":
			st.NoEntriesLeft++
		case "has_entries/wrote_entry":
			st.ExistingUserWrote++
		case "has_entries/left":
			st.ExistingUserLeft++
		}
	}
	return st
}

// ListMessageStats returns every message with its engagement counts, newest first.
func (db *DB) ListMessageStats(ctx context.Context) ([]domain.MessageStats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.MessageStats, 0, len(db.messages))
	for i := len(db.messages) - 1; i >= 0; i-- {
		out = append(out, db.messageStats(db.messages[i]))
	}
	slices.SortStableFunc(out, func(a, b domain.MessageStats) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// GetMessageStats returns the engagement counts of one message, or nil.
func (db *DB) GetMessageStats(ctx context.Context, id int64) (*domain.MessageStats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	m := db.message(id)
	if m == nil {
		return nil, nil
	}
	st := db.messageStats(m)
	return &st, nil
}

// FindInteraction returns the interaction recorded for the session, message
// and page, or nil.
func (db *DB) FindInteraction(ctx context.Context, sessionID string, messageID int64, page string) (*domain.Interaction, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, in := range db.interactions {
		if in.SessionID == sessionID && in.MessageID == messageID && in.Context == page {
			c := *in
			return &c, nil
		}
	}
	return nil, nil
}

// CreateInteraction records a message view and returns its ID.
func (db *DB) CreateInteraction(ctx context.Context, in domain.Interaction) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.interactionIDCounter++
	in.ID = db.interactionIDCounter
	db.interactions = append(db.interactions, &in)
	return in.ID, nil
}

// CompleteInteraction stores the outcome of an earlier view.
func (db *DB) CompleteInteraction(ctx context.Context, id int64, outcome string, userID *int64, at time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, in := range db.interactions {
		if in.ID == id {
			in.Outcome = &outcome
			if userID != nil {
				in.UserID = userID
			}
			in.CompletedAt = &at
			return nil
		}
	}
	return nil
}

// SiteStats counts non-admin users and their activity since the given time.
func (db *DB) SiteStats(ctx context.Context, since time.Time) (*domain.SiteStats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var st domain.SiteStats
	for _, u := range db.users {
		if u.IsAdmin() {
			continue
		}
		st.TotalUsers++
		active := false
		for _, e := range db.entries[u.ID] {
			if !e.CreatedAt.Before(since) {
				st.Entries30Days++
			}
			if !e.UpdatedAt.Before(since) {
				active = true
			}
		}
		if active {
			st.ActiveUsers30Days++
		}
	}
	return &st, nil
}
