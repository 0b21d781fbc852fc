package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"blogcms/internal/cache"
	"blogcms/internal/middleware"
	"blogcms/internal/models"
	"blogcms/internal/observability"
	"blogcms/internal/repository"
)

type PostService struct {
	repo  repository.PostRepository
	cache *cache.Cache
	now   func() time.Time
}

type CreatePostInput struct {
	Title     string
	Content   string
	Excerpt   string
	Thumbnail string
	Tags      []string
	AuthorID  uint
}

// UpdatePostInput carries a partial update. Nil fields are left unchanged.
type UpdatePostInput struct {
	Title     *string
	Content   *string
	Excerpt   *string
	Thumbnail *string
	Tags      *[]string
}

// NewPostService returns a PostService. c may be nil to disable caching.
func NewPostService(repo repository.PostRepository, c *cache.Cache) *PostService {
	return &PostService{repo: repo, cache: c, now: time.Now}
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "post", "Create")
	defer func() { observability.EndSpan(span, err) }()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.AuthorID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	post = &models.Post{
		Title:     title,
		Content:   in.Content,
		Excerpt:   in.Excerpt,
		Thumbnail: in.Thumbnail,
		Tags:      models.NormalizeTags(in.Tags),
		CreatedBy: in.AuthorID,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, mapRepoError(err, "Post", 0)
	}

	s.transitioned(ctx, observability.TransitionCreate, post.ID)
	return post, nil
}

// ListActive returns every post not in the trash, newest first.
func (s *PostService) ListActive(ctx context.Context) ([]models.Post, error) {
	posts, err := cache.Aside(ctx, s.cache, cache.PostsGenerationKey, cache.ActivePostsKey, s.repo.ListActive)
	if err != nil {
		return nil, mapRepoError(err, "Post", nil)
	}
	return posts, nil
}

// GetActive returns post id unless it is trashed or gone.
func (s *PostService) GetActive(ctx context.Context, id uint) (*models.Post, error) {
	post, err := cache.Aside(ctx, s.cache, cache.PostsGenerationKey, cache.ActivePostKey(id), func(ctx context.Context) (*models.Post, error) {
		return s.repo.GetActive(ctx, id)
	})
	if err != nil {
		return nil, mapRepoError(err, "Post", id)
	}
	return post, nil
}

// ListTrashed returns trashed posts, most recently trashed first.
func (s *PostService) ListTrashed(ctx context.Context) ([]models.Post, error) {
	posts, err := s.repo.ListTrashed(ctx)
	if err != nil {
		return nil, mapRepoError(err, "Post", nil)
	}
	return posts, nil
}

// Update applies a partial update to post id, active or trashed. It never
// touches the trash state, author or view count.
func (s *PostService) Update(ctx context.Context, id uint, in UpdatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "post", "Update")
	defer func() { observability.EndSpan(span, err) }()

	changes := &models.Post{}
	var columns []string

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		changes.Title = title
		columns = append(columns, "title")
	}
	if in.Content != nil {
		changes.Content = *in.Content
		columns = append(columns, "content")
	}
	if in.Excerpt != nil {
		changes.Excerpt = *in.Excerpt
		columns = append(columns, "excerpt")
	}
	if in.Thumbnail != nil {
		changes.Thumbnail = *in.Thumbnail
		columns = append(columns, "thumbnail")
	}
	if in.Tags != nil {
		changes.Tags = models.NormalizeTags(*in.Tags)
		columns = append(columns, "tags")
	}

	if len(columns) > 0 {
		if err := s.repo.Update(ctx, id, changes, columns); err != nil {
			return nil, mapRepoError(err, "Post", id)
		}
		s.transitioned(ctx, observability.TransitionUpdate, id)
	}

	post, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Post", id)
	}
	return post, nil
}

// SoftDelete moves post id to the trash. Trashing a trashed post succeeds
// and keeps its original deletion time.
func (s *PostService) SoftDelete(ctx context.Context, id uint) (post *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "post", "SoftDelete")
	defer func() { observability.EndSpan(span, err) }()

	changed, err := s.repo.SoftDelete(ctx, id, s.now())
	if err != nil {
		return nil, mapRepoError(err, "Post", id)
	}
	if changed {
		s.transitioned(ctx, observability.TransitionSoftDelete, id)
	}

	post, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Post", id)
	}
	return post, nil
}

// Restore takes post id out of the trash. Restoring an active post is a no-op.
func (s *PostService) Restore(ctx context.Context, id uint) (post *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "post", "Restore")
	defer func() { observability.EndSpan(span, err) }()

	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, mapRepoError(err, "Post", id)
	}
	s.transitioned(ctx, observability.TransitionRestore, id)

	post, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Post", id)
	}
	return post, nil
}

// PermanentDelete removes post id in any state. It cannot be undone.
func (s *PostService) PermanentDelete(ctx context.Context, id uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "post", "PermanentDelete")
	defer func() { observability.EndSpan(span, err) }()

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "Post", id)
	}
	s.transitioned(ctx, observability.TransitionPermanentDelete, id)
	return nil
}

// RecordView counts one view of an active post and returns the new total.
// Cached copies keep their view count until they expire.
func (s *PostService) RecordView(ctx context.Context, id uint) (int64, error) {
	views, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return 0, mapRepoError(err, "Post", id)
	}
	return views, nil
}

func (s *PostService) transitioned(ctx context.Context, transition string, id uint) {
	observability.PostTransitions.WithLabelValues(transition).Inc()
	middleware.Logger.InfoContext(ctx, "post "+transition,
		slog.Uint64("post_id", uint64(id)),
	)
	if err := s.cache.Invalidate(ctx, cache.PostsGenerationKey, cache.PostKeys(id)...); err != nil {
		middleware.Logger.WarnContext(ctx, "post cache invalidation failed",
			slog.Uint64("post_id", uint64(id)),
			slog.String("error", err.Error()),
		)
	}
}
