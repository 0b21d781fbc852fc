package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"blogcms/internal/middleware"
	"blogcms/internal/models"
	"blogcms/internal/observability"
	"blogcms/internal/repository"
)

type MessageService struct {
	repo repository.MessageRepository
	now  func() time.Time
}

type SubmitMessageInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func NewMessageService(repo repository.MessageRepository) *MessageService {
	return &MessageService{repo: repo, now: time.Now}
}

// Submit stores a contact message or, when the subject is "Comment:<postId>",
// a public comment on that post. Fields are stored as given.
func (s *MessageService) Submit(ctx context.Context, in SubmitMessageInput) (*models.Message, error) {
	kind, ref := models.ClassifySubject(in.Subject)
	msg := &models.Message{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Body:    in.Message,
		Kind:    kind,
		PostRef: ref,
		Date:    s.now(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, mapRepoError(err, "Message", 0)
	}

	observability.MessagesSubmitted.WithLabelValues(string(kind)).Inc()
	middleware.Logger.InfoContext(ctx, "message submitted",
		slog.Uint64("message_id", uint64(msg.ID)),
		slog.String("kind", string(kind)),
	)
	return msg, nil
}

// ListAll returns messages newest first, optionally only those of kind.
func (s *MessageService) ListAll(ctx context.Context, kind string) ([]models.Message, error) {
	k := models.MessageKind(strings.ToLower(strings.TrimSpace(kind)))
	if k != "" && !k.Valid() {
		return nil, models.NewValidationError("kind must be one of: contact, comment")
	}

	messages, err := s.repo.List(ctx, k)
	if err != nil {
		return nil, mapRepoError(err, "Message", nil)
	}
	return messages, nil
}

// ListPublicByPost returns the comments on postID: messages whose subject is
// exactly "Comment:<postID>".
func (s *MessageService) ListPublicByPost(ctx context.Context, postID string) ([]models.Message, error) {
	if postID == "" {
		return nil, models.NewValidationError("postId is required")
	}

	messages, err := s.repo.ListBySubject(ctx, models.CommentSubject(postID))
	if err != nil {
		return nil, mapRepoError(err, "Message", nil)
	}
	return messages, nil
}

func (s *MessageService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "Message", id)
	}
	middleware.Logger.InfoContext(ctx, "message deleted", slog.Uint64("message_id", uint64(id)))
	return nil
}
