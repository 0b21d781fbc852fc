package repository

import (
	"context"
	"time"

	"blogcms/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for message data operations
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	List(ctx context.Context, kind models.MessageKind) ([]models.Message, error)
	ListBySubject(ctx context.Context, subject string) ([]models.Message, error)
	Delete(ctx context.Context, id uint) error
}

type messageRepository struct {
	base
}

// NewMessageRepository creates a new message repository. A positive timeout bounds every call.
func NewMessageRepository(db *gorm.DB, timeout time.Duration) MessageRepository {
	return &messageRepository{base{db: db, timeout: timeout, table: "messages"}}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	db, done := r.conn(ctx, "create")
	defer done()
	return db.Create(msg).Error
}

// List returns messages newest first. An empty kind returns every message.
func (r *messageRepository) List(ctx context.Context, kind models.MessageKind) ([]models.Message, error) {
	db, done := r.conn(ctx, "list")
	defer done()

	q := db.Order("date DESC").Order("id DESC")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}

	messages := []models.Message{}
	err := q.Find(&messages).Error
	return messages, err
}

// ListBySubject returns messages whose subject equals subject exactly, newest first.
func (r *messageRepository) ListBySubject(ctx context.Context, subject string) ([]models.Message, error) {
	db, done := r.conn(ctx, "list_by_subject")
	defer done()

	messages := []models.Message{}
	err := db.Where("subject = ?", subject).
		Order("date DESC").
		Order("id DESC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	db, done := r.conn(ctx, "delete")
	defer done()
	return affectedOrNotFound(db.Delete(&models.Message{}, id))
}
