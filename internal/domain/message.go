package domain

import (
	"context"
	"time"
)

// Contexts a bank message can be shown in.
const (
	MessageContextLogin = "login"
	MessageContextEntry = "entry"
	MessageContextBoth  = "both"
)

// Message is a motivational message in the admin-managed bank.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"messageText"`
	Context   string    `json:"context"`
	Tone      *string   `json:"tone"`
	Length    *string   `json:"length"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessagePatch holds the fields of an admin update; nil fields are left unchanged.
type MessagePatch struct {
	Text     *string
	Context  *string
	Tone     *string
	Length   *string
	IsActive *bool
}

// Interaction records that a visitor saw a message and what they did next.
type Interaction struct {
	ID          int64      `json:"id"`
	MessageID   int64      `json:"messageId"`
	UserID      *int64     `json:"userId"`
	SessionID   string     `json:"sessionId"`
	Context     string     `json:"context"`
	UserState   string     `json:"userState"`
	Outcome     *string    `json:"outcome"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// MessageStats aggregates interactions for one message.
type MessageStats struct {
	Message
	TotalViews        int `json:"totalViews"`
	NewUserRegistered int `json:"newUserRegistered"`
	NewUserLeft       int `json:"newUserLeft"`
	FirstEntryWritten int `json:"firstEntryWritten"`
	NoEntriesLeft     int `json:"noEntriesLeft"`
	ExistingUserWrote int `json:"existingUserWrote"`
	ExistingUserLeft  int `json:"existingUserLeft"`
}

// SiteStats is the admin overview.
type SiteStats struct {
	TotalUsers        int `json:"totalUsers"`
	ActiveUsers30Days int `json:"activeUsers30Days"`
	Entries30Days     int `json:"entries30Days"`
}

// MessageRepository is the port for the message bank and its engagement data.
type MessageRepository interface {
	// RandomActiveMessage returns an active message for page or "both", or nil.
	RandomActiveMessage(ctx context.Context, page string) (*Message, error)
	CreateMessage(ctx context.Context, m Message) (*Message, error)
	UpdateMessage(ctx context.Context, id int64, patch MessagePatch) (*Message, error)
	DeleteMessage(ctx context.Context, id int64) (bool, error)
	ListMessageStats(ctx context.Context) ([]MessageStats, error)
	GetMessageStats(ctx context.Context, id int64) (*MessageStats, error)
	FindInteraction(ctx context.Context, sessionID string, messageID int64, page string) (*Interaction, error)
	CreateInteraction(ctx context.Context, in Interaction) (int64, error)
	CompleteInteraction(ctx context.Context, id int64, outcome string, userID *int64, at time.Time) error
	SiteStats(ctx context.Context, since time.Time) (*SiteStats, error)
}
