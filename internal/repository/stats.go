package repository

import (
	"context"
	"time"

	"blogcms/internal/models"

	"gorm.io/gorm"
)

// Totals holds the raw counters behind the dashboard.
type Totals struct {
	Posts    int64
	Messages int64
	Views    int64
}

// PostViews is the creation time and view count of one post.
type PostViews struct {
	CreatedAt time.Time
	Views     int64
}

// StatsRepository reads aggregates across posts and messages.
type StatsRepository interface {
	Totals(ctx context.Context) (Totals, error)
	PostViews(ctx context.Context) ([]PostViews, error)
}

type statsRepository struct {
	base
}

// NewStatsRepository creates a new stats repository. A positive timeout bounds every call.
func NewStatsRepository(db *gorm.DB, timeout time.Duration) StatsRepository {
	return &statsRepository{base{db: db, timeout: timeout, table: "posts"}}
}

// Totals counts every post, trashed ones included, every message and all views.
func (r *statsRepository) Totals(ctx context.Context) (Totals, error) {
	db, done := r.conn(ctx, "totals")
	defer done()

	var t Totals
	if err := db.Model(&models.Post{}).Count(&t.Posts).Error; err != nil {
		return Totals{}, err
	}
	if err := db.Model(&models.Message{}).Count(&t.Messages).Error; err != nil {
		return Totals{}, err
	}
	if err := db.Model(&models.Post{}).Select("COALESCE(SUM(views), 0)").Scan(&t.Views).Error; err != nil {
		return Totals{}, err
	}
	return t, nil
}

// PostViews returns the creation time and views of every post.
func (r *statsRepository) PostViews(ctx context.Context) ([]PostViews, error) {
	db, done := r.conn(ctx, "post_views")
	defer done()

	rows := []PostViews{}
	err := db.Model(&models.Post{}).Select("created_at", "views").Scan(&rows).Error
	return rows, err
}
