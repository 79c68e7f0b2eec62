package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNotFound is returned when a conversation id does not resolve.
var ErrNotFound = errors.New("conversation not found")

// Message is a single turn in a conversation. Immutable once created;
// ids are unique and monotonically increasing in creation order.
type Message struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ConversationID string    `json:"-" gorm:"type:varchar(36);index;not null"`
	Role           string    `json:"role" gorm:"type:varchar(16);not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation is an ordered, named sequence of messages. Messages are
// append-only; UpdatedAt tracks the most recently appended message.
type Conversation struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Title     string    `json:"title" gorm:"type:varchar(64);not null"`
	Messages  []Message `json:"messages" gorm:"foreignKey:ConversationID;references:ID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
}

// Summary is the listing view of a conversation, without its messages.
type Summary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store defines the interface for durable conversation storage
type Store interface {
	Create(ctx context.Context, title string) (*Conversation, error)
	Get(ctx context.Context, id string) (*Conversation, error)
	Append(ctx context.Context, conversationID, role, content string) (*Message, error)
	Rename(ctx context.Context, id, newTitle string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Summary, error)
	Close() error
}

// ------------------------------------------------------------------------------------------------------
// ValidRole reports whether role is one of the two accepted message roles
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// ------------------------------------------------------------------------------------------------------
// DeriveTitle builds a conversation title from the first user message,
// truncated to 40 runes with a trailing ellipsis.
func DeriveTitle(text string) string {
	const maxTitleLen = 40

	t := strings.Join(strings.Fields(text), " ")
	if t == "" {
		return "New analysis"
	}

	runes := []rune(t)
	if len(runes) > maxTitleLen {
		return string(runes[:maxTitleLen]) + "…"
	}
	return t
}

// ------------------------------------------------------------------------------------------------------
// Buckets groups conversation summaries by recency of their last message
type Buckets struct {
	Today     []Summary `json:"today"`
	Yesterday []Summary `json:"yesterday"`
	Older     []Summary `json:"older"`
}

// ------------------------------------------------------------------------------------------------------
// GroupByRecency splits summaries into today/yesterday/older buckets by
// comparing each UpdatedAt date against the caller's wall-clock date.
// Input order is preserved within each bucket.
func GroupByRecency(summaries []Summary, now time.Time) Buckets {
	var b Buckets
	yesterday := now.AddDate(0, 0, -1)

	for _, s := range summaries {
		switch {
		case sameDay(s.UpdatedAt, now):
			b.Today = append(b.Today, s)
		case sameDay(s.UpdatedAt, yesterday):
			b.Yesterday = append(b.Yesterday, s)
		default:
			b.Older = append(b.Older, s)
		}
	}

	return b
}

// ------------------------------------------------------------------------------------------------------
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
