package seed

import (
	"context"
	"fmt"
	"strings"

	"blogcms/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// GeneratePosts builds n lorem posts by authorID. The same seed always
// yields the same posts.
func GeneratePosts(n int, authorID uint, seed int64) []service.CreatePostInput {
	faker := gofakeit.New(seed)

	out := make([]service.CreatePostInput, 0, n)
	for i := 0; i < n; i++ {
		title := strings.TrimSuffix(faker.Sentence(5), ".")
		tags := []string{faker.Word(), faker.Word(), faker.Word()}
		out = append(out, service.CreatePostInput{
			Title:     title,
			Excerpt:   faker.Sentence(14),
			Content:   "# " + title + "\n\n" + faker.Paragraph(3, 4, 12, "\n\n"),
			Thumbnail: fmt.Sprintf("https://picsum.photos/seed/%s/800/400", faker.UUID()),
			Tags:      tags,
			AuthorID:  authorID,
		})
	}
	return out
}

// CreateGenerated persists n generated posts and returns how many were written.
func (s *Seeder) CreateGenerated(ctx context.Context, n int, authorID uint, seed int64) (int, error) {
	created := 0
	for _, in := range GeneratePosts(n, authorID, seed) {
		if _, err := s.posts.Create(ctx, in); err != nil {
			return created, fmt.Errorf("create generated post: %w", err)
		}
		created++
	}
	return created, nil
}
