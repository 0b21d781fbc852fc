package repository

import (
	"context"
	"time"

	"blogcms/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetActive(ctx context.Context, id uint) (*models.Post, error)
	ListActive(ctx context.Context) ([]models.Post, error)
	ListTrashed(ctx context.Context) ([]models.Post, error)
	Update(ctx context.Context, id uint, changes *models.Post, columns []string) error
	SoftDelete(ctx context.Context, id uint, at time.Time) (bool, error)
	Restore(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	base
}

// NewPostRepository creates a new post repository. A positive timeout bounds every call.
func NewPostRepository(db *gorm.DB, timeout time.Duration) PostRepository {
	return &postRepository{base{db: db, timeout: timeout, table: "posts"}}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	db, done := r.conn(ctx, "create")
	defer done()
	return db.Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	db, done := r.conn(ctx, "get_by_id")
	defer done()

	var post models.Post
	if err := db.First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetActive(ctx context.Context, id uint) (*models.Post, error) {
	db, done := r.conn(ctx, "get_active")
	defer done()

	var post models.Post
	if err := db.Where("deleted = ?", false).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListActive(ctx context.Context) ([]models.Post, error) {
	db, done := r.conn(ctx, "list_active")
	defer done()

	posts := []models.Post{}
	err := db.Where("deleted = ?", false).
		Order("created_at DESC").
		Order("id DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListTrashed(ctx context.Context) ([]models.Post, error) {
	db, done := r.conn(ctx, "list_trashed")
	defer done()

	posts := []models.Post{}
	err := db.Where("deleted = ?", true).
		Order("deleted_at DESC").
		Order("id DESC").
		Find(&posts).Error
	return posts, err
}

// Update writes the named columns of changes to post id in whichever state
// it is in. Zero values in changes are written when their column is named.
func (r *postRepository) Update(ctx context.Context, id uint, changes *models.Post, columns []string) error {
	db, done := r.conn(ctx, "update")
	defer done()

	selected := append([]string{"updated_at"}, columns...)
	return affectedOrNotFound(db.Model(&models.Post{}).
		Where("id = ?", id).
		Select(selected).
		Updates(changes))
}

// SoftDelete moves an active post to the trash and reports whether it did.
// An already trashed post is left untouched and reported as unchanged.
func (r *postRepository) SoftDelete(ctx context.Context, id uint, at time.Time) (bool, error) {
	db, done := r.conn(ctx, "soft_delete")
	defer done()

	tx := db.Model(&models.Post{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]interface{}{"deleted": true, "deleted_at": at})
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := db.Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, gorm.ErrRecordNotFound
	}
	return false, nil
}

func (r *postRepository) Restore(ctx context.Context, id uint) error {
	db, done := r.conn(ctx, "restore")
	defer done()

	return affectedOrNotFound(db.Model(&models.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"deleted": false, "deleted_at": nil}))
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	db, done := r.conn(ctx, "delete")
	defer done()
	return affectedOrNotFound(db.Delete(&models.Post{}, id))
}

// IncrementViews bumps the view counter of an active post and returns the new count.
func (r *postRepository) IncrementViews(ctx context.Context, id uint) (int64, error) {
	db, done := r.conn(ctx, "increment_views")
	defer done()

	err := affectedOrNotFound(db.Model(&models.Post{}).
		Where("id = ? AND deleted = ?", id, false).
		UpdateColumn("views", gorm.Expr("views + ?", 1)))
	if err != nil {
		return 0, err
	}

	var views int64
	err = db.Model(&models.Post{}).Where("id = ?", id).Select("views").Scan(&views).Error
	if err != nil {
		return 0, err
	}
	return views, nil
}
