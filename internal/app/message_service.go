package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"journal/internal/domain"

	"github.com/google/uuid"
)

// ErrMessageNotFound indicates the requested bank message does not exist.
var ErrMessageNotFound = errors.New("message not found")

// FallbackMessageText is shown when the bank has nothing for a context.
const FallbackMessageText = "Start writing your journal today."

// Visitor states recorded with an interaction.
const (
	UserStateNewVisitor = "new_visitor"
	UserStateNoEntries  = "no_entries"
	UserStateHasEntries = "has_entries"
)

var (
	displayContexts = []string{"login", "entry", "register"}
	bankContexts    = []string{domain.MessageContextLogin, domain.MessageContextEntry, domain.MessageContextBoth}
	visitorStates   = []string{UserStateNewVisitor, UserStateNoEntries, UserStateHasEntries}
	visitorOutcomes = []string{"registered", "wrote_first_entry", "wrote_entry", "left"}
	siteStatsWindow = 30 * 24 * time.Hour
)

// TrackRequest reports that a visitor saw a message, and optionally what
// they did afterwards.
type TrackRequest struct {
	MessageID int64   `json:"messageId"`
	SessionID string  `json:"sessionId"`
	UserID    *int64  `json:"userId"`
	Context   string  `json:"context"`
	UserState string  `json:"userState"`
	Outcome   *string `json:"outcome"`
}

// MessageService manages the motivational message bank shown on the login
// and entry pages, and the engagement data collected for it.
type MessageService struct {
	repo    domain.MessageRepository
	entries domain.EntryRepository
	now     Clock
}

// NewMessageService creates a MessageService. A nil clock uses time.Now.
func NewMessageService(repo domain.MessageRepository, entries domain.EntryRepository, now Clock) *MessageService {
	if now == nil {
		now = time.Now
	}
	return &MessageService{repo: repo, entries: entries, now: now}
}

// NewSessionID returns an identifier for an anonymous viewing session.
func (s *MessageService) NewSessionID() string {
	return uuid.NewString()
}

// RandomMessage picks an active message for page. When none
// matches, a fallback message with ID 0 is returned.
func (s *MessageService) RandomMessage(ctx context.Context, page string) (*domain.Message, error) {
	if !slices.Contains(displayContexts, page) {
		return nil, fmt.Errorf("%w: context must be one of %s", ErrValidation, strings.Join(displayContexts, ", "))
	}
	m, err := s.repo.RandomActiveMessage(ctx, page)
	if err != nil {
		return nil, err
	}
	if m == nil {
		short, simple := "short", "simple"
		return &domain.Message{
			Text:     FallbackMessageText,
			Context:  domain.MessageContextBoth,
			Tone:     &simple,
			Length:   &short,
			IsActive: true,
		}, nil
	}
	return m, nil
}

// Track records a view, or completes an earlier one with its outcome. A
// repeat view without an outcome leaves the existing record untouched.
func (s *MessageService) Track(ctx context.Context, req TrackRequest) (int64, error) {
	switch {
	case req.MessageID <= 0:
		return 0, fmt.Errorf("%w: messageId is required", ErrValidation)
	case req.SessionID == "":
		return 0, fmt.Errorf("%w: sessionId is required", ErrValidation)
	case !slices.Contains(displayContexts, req.Context):
		return 0, fmt.Errorf("%w: unknown context %q", ErrValidation, req.Context)
	case !slices.Contains(visitorStates, req.UserState):
		return 0, fmt.Errorf("%w: unknown userState %q", ErrValidation, req.UserState)
	case req.Outcome != nil && !slices.Contains(visitorOutcomes, *req.Outcome):
		return 0, fmt.Errorf("%w: unknown outcome %q", ErrValidation, *req.Outcome)
	}

	existing, err := s.repo.FindInteraction(ctx, req.SessionID, req.MessageID, req.Context)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		if req.Outcome != nil {
			if err := s.repo.CompleteInteraction(ctx, existing.ID, *req.Outcome, req.UserID, s.now()); err != nil {
				return 0, err
			}
		}
		return existing.ID, nil
	}

	in := domain.Interaction{
		MessageID: req.MessageID,
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Context:   req.Context,
		UserState: req.UserState,
		Outcome:   req.Outcome,
		CreatedAt: s.now(),
	}
	if req.Outcome != nil {
		at := s.now()
		in.CompletedAt = &at
	}
	return s.repo.CreateInteraction(ctx, in)
}

// UserState classifies a signed-in user for interaction tracking.
func (s *MessageService) UserState(ctx context.Context, userID int64) (string, int, error) {
	n, err := s.entries.CountEntries(ctx, userID)
	if err != nil {
		return "", 0, err
	}
	if n == 0 {
		return UserStateNoEntries, 0, nil
	}
	return UserStateHasEntries, n, nil
}

// ListMessages returns every bank message with its engagement stats, newest first.
func (s *MessageService) ListMessages(ctx context.Context) ([]domain.MessageStats, error) {
	return s.repo.ListMessageStats(ctx)
}

// CreateMessage adds an active message to the bank.
func (s *MessageService) CreateMessage(ctx context.Context, text, msgContext string, tone, length *string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: messageText is required", ErrValidation)
	}
	if !slices.Contains(bankContexts, msgContext) {
		return nil, fmt.Errorf("%w: context must be one of %s", ErrValidation, strings.Join(bankContexts, ", "))
	}
	return s.repo.CreateMessage(ctx, domain.Message{
		Text:      text,
		Context:   msgContext,
		Tone:      tone,
		Length:    length,
		IsActive:  true,
		CreatedAt: s.now(),
	})
}

// UpdateMessage applies patch to the message with the given ID.
func (s *MessageService) UpdateMessage(ctx context.Context, id int64, patch domain.MessagePatch) (*domain.Message, error) {
	if patch == (domain.MessagePatch{}) {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return nil, fmt.Errorf("%w: messageText must not be empty", ErrValidation)
	}
	if patch.Context != nil && !slices.Contains(bankContexts, *patch.Context) {
		return nil, fmt.Errorf("%w: context must be one of %s", ErrValidation, strings.Join(bankContexts, ", "))
	}
	m, err := s.repo.UpdateMessage(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMessageNotFound
	}
	return m, nil
}

// DeleteMessage removes a message and its interactions.
func (s *MessageService) DeleteMessage(ctx context.Context, id int64) error {
	ok, err := s.repo.DeleteMessage(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMessageNotFound
	}
	return nil
}

// MessageStats returns the engagement stats of one message.
func (s *MessageService) MessageStats(ctx context.Context, id int64) (*domain.MessageStats, error) {
	st, err := s.repo.GetMessageStats(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrMessageNotFound
	}
	return st, nil
}

// SiteStats summarizes users and entries over the last 30 days.
func (s *MessageService) SiteStats(ctx context.Context) (*domain.SiteStats, error) {
	return s.repo.SiteStats(ctx, s.now().Add(-siteStatsWindow))
}
