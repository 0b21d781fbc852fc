package models

import (
	"strings"
	"time"
)

// Post is a blog article. A post is either active (Deleted=false) or trashed
// (Deleted=true with DeletedAt set); permanently deleted posts no longer exist.
type Post struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"not null" json:"title"`
	Content   string     `gorm:"type:text" json:"content"`
	Excerpt   string     `gorm:"type:text" json:"excerpt"`
	Thumbnail string     `json:"thumbnail"`
	Tags      []string   `gorm:"type:text;serializer:json" json:"tags"`
	CreatedBy uint       `gorm:"index" json:"createdBy"`
	Views     int64      `gorm:"not null;default:0" json:"views"`
	Deleted   bool       `gorm:"not null;default:false;index" json:"deleted"`
	DeletedAt *time.Time `json:"deletedAt"`
	CreatedAt time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NormalizeTags trims tags, drops blanks and removes duplicates while keeping
// first-seen order. A nil input yields an empty, non-nil slice.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
