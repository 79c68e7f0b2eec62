package store

import (
	"context"
	"errors"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLiteStore persists conversations in an embedded SQLite database.
// Message ids come from the autoincrement column, so they stay unique and
// monotonic across restarts.
type SQLiteStore struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// ------------------------------------------------------------------------------------------------------
// NewSQLiteStore opens the database at path and migrates the schema
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Conversation{}, &Message{}); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db, logger: logger, now: time.Now}, nil
}

// ------------------------------------------------------------------------------------------------------
func (s *SQLiteStore) Create(ctx context.Context, title string) (*Conversation, error) {
	now := s.now()
	conv := &Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		return nil, err
	}
	return conv, nil
}

// ------------------------------------------------------------------------------------------------------
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Conversation, error) {
	var conv Conversation
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&conv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ------------------------------------------------------------------------------------------------------
func (s *SQLiteStore) Append(ctx context.Context, conversationID, role, content string) (*Message, error) {
	msg := &Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      s.now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv Conversation
		if err := tx.Select("id").First(&conv, "id = ?", conversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		return tx.Model(&Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", msg.CreatedAt).Error
	})
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// ------------------------------------------------------------------------------------------------------
func (s *SQLiteStore) Rename(ctx context.Context, id, newTitle string) error {
	res := s.db.WithContext(ctx).Model(&Conversation{}).
		Where("id = ?", id).
		Update("title", newTitle)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ------------------------------------------------------------------------------------------------------
// Delete removes a conversation and its messages. Idempotent.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Conversation{}).Error
	})
}

// ------------------------------------------------------------------------------------------------------
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	var convs []Conversation
	if err := s.db.WithContext(ctx).
		Order("updated_at DESC").
		Find(&convs).Error; err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(convs))
	for _, conv := range convs {
		var count int64
		if err := s.db.WithContext(ctx).Model(&Message{}).
			Where("conversation_id = ?", conv.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		summaries = append(summaries, Summary{
			ID:           conv.ID,
			Title:        conv.Title,
			MessageCount: int(count),
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
		})
	}

	return summaries, nil
}

// ------------------------------------------------------------------------------------------------------
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
