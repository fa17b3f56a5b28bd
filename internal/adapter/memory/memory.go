// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"journal/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu           sync.Mutex
	users        []*domain.User
	progress     map[int64]*domain.ProgressData
	entries      map[int64]map[string]*domain.Entry
	sessions     map[string]*domain.Session
	messages     []*domain.Message
	interactions []*domain.Interaction

	userIDCounter        int64
	entryIDCounter       int64
	messageIDCounter     int64
	interactionIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		progress: make(map[int64]*domain.ProgressData),
		entries:  make(map[int64]map[string]*domain.Entry),
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var (
	_ domain.UserRepository     = (*DB)(nil)
	_ domain.EntryRepository    = (*DB)(nil)
	_ domain.ProgressRepository = (*DB)(nil)
	_ domain.MessageRepository  = (*DB)(nil)
	_ domain.SessionRepository  = (*SessionRepo)(nil)
)

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if u := db.user(id); u != nil {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (db *DB) user(id int64) *domain.User {
	for _, u := range db.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// Create creates a new user along with an empty progress record.
func (db *DB) Create(ctx context.Context, username, passwordHash, role string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	db.progress[u.ID] = &domain.ProgressData{CompletionSamples: []domain.CompletionSample{}}
	c := *u
	return &c, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- EntryRepository ---

func cloneEntry(e *domain.Entry) domain.Entry {
	c := *e
	c.Content = slices.Clone(e.Content)
	return c
}

// UpsertEntry creates the entry for the day or replaces its content.
func (db *DB) UpsertEntry(ctx context.Context, userID int64, day time.Time, content json.RawMessage) (*domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := day.Format(domain.DayLayout)
	now := time.Now().UTC()
	byDay := db.entries[userID]
	if byDay == nil {
		byDay = make(map[string]*domain.Entry)
		db.entries[userID] = byDay
	}

	e, ok := byDay[key]
	if !ok {
		db.entryIDCounter++
		e = &domain.Entry{ID: db.entryIDCounter, UserID: userID, Date: key, CreatedAt: now}
		byDay[key] = e
	}
	e.Content = slices.Clone(content)
	e.UpdatedAt = now
	c := cloneEntry(e)
	return &c, nil
}

// GetEntry returns the entry for the day, or nil.
func (db *DB) GetEntry(ctx context.Context, userID int64, day time.Time) (*domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if e, ok := db.entries[userID][day.Format(domain.DayLayout)]; ok {
		c := cloneEntry(e)
		return &c, nil
	}
	return nil, nil
}

// sortedEntries returns the user's entries matching keep, oldest first.
func (db *DB) sortedEntries(userID int64, keep func(day time.Time) bool) []domain.Entry {
	out := make([]domain.Entry, 0)
	for key, e := range db.entries[userID] {
		d, err := domain.ParseDay(key)
		if err != nil || !keep(d) {
			continue
		}
		out = append(out, cloneEntry(e))
	}
	slices.SortFunc(out, func(a, b domain.Entry) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return out
}

// ListEntriesBetween returns entries within [start, end], oldest first.
func (db *DB) ListEntriesBetween(ctx context.Context, userID int64, start, end time.Time) ([]domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	from, to := domain.DayOf(start), domain.DayOf(end)
	return db.sortedEntries(userID, func(d time.Time) bool {
		return !d.Before(from) && !d.After(to)
	}), nil
}

// ListEntriesOnDay returns entries written on month/day of any year, oldest first.
func (db *DB) ListEntriesOnDay(ctx context.Context, userID int64, month time.Month, day int) ([]domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.sortedEntries(userID, func(d time.Time) bool {
		return d.Month() == month && d.Day() == day
	}), nil
}

// DeleteEntry removes the entry for the day and reports whether one existed.
func (db *DB) DeleteEntry(ctx context.Context, userID int64, day time.Time) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := day.Format(domain.DayLayout)
	if _, ok := db.entries[userID][key]; !ok {
		return false, nil
	}
	delete(db.entries[userID], key)
	return true, nil
}

// CountEntries returns how many entries the user has written.
func (db *DB) CountEntries(ctx context.Context, userID int64) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.entries[userID]), nil
}

// --- ProgressRepository ---

// ListEntryDates returns every entry day of the user, newest first.
func (db *DB) ListEntryDates(ctx context.Context, userID int64) ([]time.Time, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	entries := db.sortedEntries(userID, func(time.Time) bool { return true })
	out := make([]time.Time, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		d, _ := domain.ParseDay(entries[i].Date)
		out = append(out, d)
	}
	return out, nil
}

// GetStreakState returns the stored streak, or nil for an unknown user.
func (db *DB) GetStreakState(ctx context.Context, userID int64) (*domain.StreakState, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.progress[userID]
	if !ok {
		return nil, nil
	}
	st := p.StreakState
	return &st, nil
}

// UpdateStreakState stores the streak. The best streak never decreases.
func (db *DB) UpdateStreakState(ctx context.Context, userID int64, st domain.StreakState) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.progress[userID]
	if !ok {
		return nil
	}
	p.CurrentStreak = st.CurrentStreak
	p.CurrentStreakDate = nil
	if st.CurrentStreakDate != nil {
		d := domain.DayOf(*st.CurrentStreakDate)
		p.CurrentStreakDate = &d
	}
	p.BestStreak = max(p.BestStreak, st.BestStreak)
	return nil
}

func (db *DB) countEntries(userID int64, keep func(day time.Time) bool) int {
	n := 0
	for key := range db.entries[userID] {
		if d, err := domain.ParseDay(key); err == nil && keep(d) {
			n++
		}
	}
	return n
}

// MonthEntryCount counts the user's entries in the given month.
func (db *DB) MonthEntryCount(ctx context.Context, userID int64, year int, month time.Month) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.countEntries(userID, func(d time.Time) bool {
		return d.Year() == year && d.Month() == month
	}), nil
}

// YearEntryCount counts the user's entries in the given calendar year.
func (db *DB) YearEntryCount(ctx context.Context, userID int64, year int) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.countEntries(userID, func(d time.Time) bool { return d.Year() == year }), nil
}

// FirstEntryDate returns the user's oldest entry day, or nil.
func (db *DB) FirstEntryDate(ctx context.Context, userID int64) (*time.Time, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var first *time.Time
	for key := range db.entries[userID] {
		d, err := domain.ParseDay(key)
		if err != nil {
			continue
		}
		if first == nil || d.Before(*first) {
			first = &d
		}
	}
	return first, nil
}

// GetCompletionSamples returns the stored monthly samples, or nil for an unknown user.
func (db *DB) GetCompletionSamples(ctx context.Context, userID int64) ([]domain.CompletionSample, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.progress[userID]
	if !ok {
		return nil, nil
	}
	return slices.Clone(p.CompletionSamples), nil
}

// ReplaceCompletionSamples overwrites the stored monthly samples.
func (db *DB) ReplaceCompletionSamples(ctx context.Context, userID int64, samples []domain.CompletionSample) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if p, ok := db.progress[userID]; ok {
		p.CompletionSamples = append([]domain.CompletionSample{}, samples...)
	}
	return nil
}

// GetProgressData returns the persisted progress record, or nil for an unknown user.
func (db *DB) GetProgressData(ctx context.Context, userID int64) (*domain.ProgressData, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.progress[userID]
	if !ok {
		return nil, nil
	}
	c := *p
	c.CompletionSamples = append([]domain.CompletionSample{}, p.CompletionSamples...)
	return &c, nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		if time.Now().After(s.ExpiresAt) {
			delete(r.db.sessions, token)
			return nil, nil
		}
		c := *s
		return &c, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
