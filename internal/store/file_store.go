package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// snapshot is the on-disk format: the whole collection serialized as one
// JSON document under a fixed path, rewritten on every mutation.
type snapshot struct {
	NextMessageID int64           `json:"next_message_id"`
	Conversations []*Conversation `json:"conversations"`
}

// FileStore keeps the conversation collection in memory and mirrors every
// mutation to a JSON snapshot file. Persistence is best-effort: a failed
// write is logged and the in-memory state still stands.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	state  snapshot
	now    func() time.Time
}

// ------------------------------------------------------------------------------------------------------
// NewFileStore opens (or creates) the snapshot at path and loads it
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		logger: logger,
		state:  snapshot{NextMessageID: 1},
		now:    time.Now,
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation snapshot: %w", err)
	}

	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("failed to decode conversation snapshot: %w", err)
	}
	if s.state.NextMessageID < 1 {
		s.state.NextMessageID = 1
	}

	return s, nil
}

// ------------------------------------------------------------------------------------------------------
func (s *FileStore) Create(_ context.Context, title string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	conv := &Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Most recently created first
	s.state.Conversations = append([]*Conversation{conv}, s.state.Conversations...)
	s.persistLocked()

	return copyConversation(conv), nil
}

// ------------------------------------------------------------------------------------------------------
func (s *FileStore) Get(_ context.Context, id string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(id)
	if conv == nil {
		return nil, ErrNotFound
	}
	return copyConversation(conv), nil
}

// ------------------------------------------------------------------------------------------------------
func (s *FileStore) Append(_ context.Context, conversationID, role, content string) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(conversationID)
	if conv == nil {
		return nil, ErrNotFound
	}

	msg := Message{
		ID:             s.state.NextMessageID,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      s.now(),
	}
	s.state.NextMessageID++

	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = msg.CreatedAt
	s.persistLocked()

	return &msg, nil
}

// ------------------------------------------------------------------------------------------------------
func (s *FileStore) Rename(_ context.Context, id, newTitle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(id)
	if conv == nil {
		return ErrNotFound
	}

	conv.Title = newTitle
	s.persistLocked()
	return nil
}

// ------------------------------------------------------------------------------------------------------
// Delete removes a conversation from the collection. Idempotent: deleting
// an id that is already absent is not an error.
func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, conv := range s.state.Conversations {
		if conv.ID == id {
			s.state.Conversations = append(s.state.Conversations[:i], s.state.Conversations[i+1:]...)
			s.persistLocked()
			return nil
		}
	}
	return nil
}

// ------------------------------------------------------------------------------------------------------
func (s *FileStore) List(_ context.Context) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]Summary, 0, len(s.state.Conversations))
	for _, conv := range s.state.Conversations {
		summaries = append(summaries, Summary{
			ID:           conv.ID,
			Title:        conv.Title,
			MessageCount: len(conv.Messages),
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	return summaries, nil
}

// ------------------------------------------------------------------------------------------------------
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked()
}

// ------------------------------------------------------------------------------------------------------
func (s *FileStore) findLocked(id string) *Conversation {
	for _, conv := range s.state.Conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

// ------------------------------------------------------------------------------------------------------
// persistLocked writes the whole collection before the mutating call
// returns. Failures are logged and swallowed: durability is best-effort
// and the caller keeps the in-memory result.
func (s *FileStore) persistLocked() {
	if err := s.writeLocked(); err != nil && s.logger != nil {
		s.logger.Warn("Failed to persist conversations",
			zap.String("path", s.path),
			zap.Error(err),
		)
	}
}

// ------------------------------------------------------------------------------------------------------
func (s *FileStore) writeLocked() error {
	data, err := json.MarshalIndent(&s.state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// ------------------------------------------------------------------------------------------------------
func copyConversation(conv *Conversation) *Conversation {
	out := *conv
	out.Messages = make([]Message, len(conv.Messages))
	copy(out.Messages, conv.Messages)
	return &out
}
