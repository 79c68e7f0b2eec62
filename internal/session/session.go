package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	apperror "github.com/Paddy1981/larun-space/internal/error"
	"github.com/Paddy1981/larun-space/internal/llm"
	"github.com/Paddy1981/larun-space/internal/store"
	"github.com/Paddy1981/larun-space/internal/usage"
	"go.uber.org/zap"
)

// Session orchestrates one user's conversation flow: it owns the
// current-conversation reference and the loading flag, and drives
// store appends around each completion. At most one Send runs at a
// time; overlapping calls are rejected while loading is set.
type Session struct {
	store     store.Store
	completer llm.Completer
	recorder  usage.Recorder
	tiers     usage.TierReader
	logger    *zap.Logger

	mu        sync.Mutex
	currentID string
	loading   atomic.Bool
}

// SendResult reports the outcome of one completed Send
type SendResult struct {
	ConversationID string         `json:"conversation_id"`
	Reply          *store.Message `json:"reply"`
	Source         llm.Source     `json:"source"`
	Reason         string         `json:"-"`
}

// ------------------------------------------------------------------------------------------------------
// New creates a session controller with injected dependencies
func New(st store.Store, completer llm.Completer, recorder usage.Recorder, tiers usage.TierReader, logger *zap.Logger) *Session {
	return &Session{
		store:     st,
		completer: completer,
		recorder:  recorder,
		tiers:     tiers,
		logger:    logger,
	}
}

// ------------------------------------------------------------------------------------------------------
// Send runs one user turn: append the user message (creating a
// conversation if none is current), request a completion, append the
// reply. Returns ErrSessionBusy while a previous Send is in flight.
func (s *Session) Send(ctx context.Context, text string) (*SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.NewValidationError("message cannot be empty", apperror.ErrMessageEmpty)
	}

	if !s.loading.CompareAndSwap(false, true) {
		return nil, apperror.NewBusyError("a message is already being processed")
	}
	defer s.loading.Store(false)

	conv, err := s.currentOrCreate(ctx, text)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	if _, err := s.store.Append(ctx, conv.ID, store.RoleUser, text); err != nil {
		return nil, apperror.NewPersistenceError("failed to record user message", err)
	}

	result := s.complete(ctx, text, history)

	reply, err := s.store.Append(ctx, conv.ID, store.RoleAssistant, result.Text)
	if err != nil {
		return nil, apperror.NewPersistenceError("failed to record assistant message", err)
	}

	s.record(ctx, usage.Event{
		Type:           usage.EventChatMessage,
		ConversationID: conv.ID,
		Detail:         string(result.Source),
		Tier:           s.tier(ctx),
		CreatedAt:      time.Now(),
	})

	return &SendResult{
		ConversationID: conv.ID,
		Reply:          reply,
		Source:         result.Source,
		Reason:         result.Reason,
	}, nil
}

// ------------------------------------------------------------------------------------------------------
// Select makes an existing conversation the current one
func (s *Session) Select(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.currentID = id
	s.mu.Unlock()
	return nil
}

// ------------------------------------------------------------------------------------------------------
// Current returns the current conversation id, or "" if none
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// ------------------------------------------------------------------------------------------------------
// Loading reports whether a Send is in flight
func (s *Session) Loading() bool {
	return s.loading.Load()
}

// ------------------------------------------------------------------------------------------------------
// NewConversation clears the current-conversation reference without
// deleting anything; the next Send starts a fresh conversation.
func (s *Session) NewConversation() {
	s.mu.Lock()
	s.currentID = ""
	s.mu.Unlock()
}

// ------------------------------------------------------------------------------------------------------
// DeleteConversation removes a stored conversation; if it was current,
// the current reference is cleared too.
func (s *Session) DeleteConversation(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.currentID == id {
		s.currentID = ""
	}
	s.mu.Unlock()
	return nil
}

// ------------------------------------------------------------------------------------------------------
// currentOrCreate resolves the current conversation, creating one titled
// from the message when none is current or the current id no longer
// resolves (it may have been deleted out from under us).
func (s *Session) currentOrCreate(ctx context.Context, text string) (*store.Conversation, error) {
	s.mu.Lock()
	id := s.currentID
	s.mu.Unlock()

	if id != "" {
		conv, err := s.store.Get(ctx, id)
		if err == nil {
			return conv, nil
		}
		if err != store.ErrNotFound {
			return nil, apperror.NewPersistenceError("failed to load conversation", err)
		}
	}

	conv, err := s.store.Create(ctx, store.DeriveTitle(text))
	if err != nil {
		return nil, apperror.NewPersistenceError("failed to create conversation", err)
	}

	s.mu.Lock()
	s.currentID = conv.ID
	s.mu.Unlock()
	return conv, nil
}

// ------------------------------------------------------------------------------------------------------
// complete shields Send from a completer that blows up: the gateway
// contract is error-free, so anything escaping it becomes an inline
// error reply rather than a failed Send.
func (s *Session) complete(ctx context.Context, text string, history []llm.Message) (result llm.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Completer panicked", zap.Any("panic", r))
			result = llm.Result{
				Text:   fmt.Sprintf("Analysis failed unexpectedly: %v. Please try again.", r),
				Source: llm.SourceFallback,
				Reason: fmt.Sprintf("completer panic: %v", r),
			}
		}
	}()

	return s.completer.Complete(ctx, text, history)
}

// ------------------------------------------------------------------------------------------------------
// tier resolves the account tier for event stamping; lookup failures
// degrade to an empty tier.
func (s *Session) tier(ctx context.Context) string {
	if s.tiers == nil {
		return ""
	}
	t, err := s.tiers.Tier(ctx, "")
	if err != nil {
		s.logger.Warn("Failed to resolve account tier", zap.Error(err))
		return ""
	}
	return t
}

// ------------------------------------------------------------------------------------------------------
func (s *Session) record(ctx context.Context, ev usage.Event) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, ev); err != nil {
		s.logger.Warn("Failed to record usage event",
			zap.String("type", ev.Type),
			zap.Error(err),
		)
	}
}
