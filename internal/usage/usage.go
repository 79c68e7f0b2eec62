package usage

import (
	"context"
	"time"
)

// Event is a single recorded activity. Tier carries the account tier at
// the time of the event so the billing consumers can meter without a
// second lookup.
type Event struct {
	Type           string    `json:"type"`
	ConversationID string    `json:"conversation_id,omitempty"`
	TargetID       string    `json:"target_id,omitempty"`
	Detail         string    `json:"detail,omitempty"`
	Tier           string    `json:"tier,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

const (
	EventChatMessage  = "chat_message"
	EventTargetLookup = "target_lookup"
)

// Recorder defines the capability contract for activity logging. The
// core only needs "record event"; where events end up is a collaborator
// concern.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
	Close() error
}

// TierReader defines the capability contract for subscription tier lookup
type TierReader interface {
	Tier(ctx context.Context, userID string) (string, error)
}

// StaticTierReader answers every lookup with a fixed tier. Stands in for
// the external profile service.
type StaticTierReader struct {
	tier string
}

// ------------------------------------------------------------------------------------------------------
func NewStaticTierReader(tier string) *StaticTierReader {
	if tier == "" {
		tier = "free"
	}
	return &StaticTierReader{tier: tier}
}

// ------------------------------------------------------------------------------------------------------
func (r *StaticTierReader) Tier(_ context.Context, _ string) (string, error) {
	return r.tier, nil
}
