// Package seed loads demo content into the blog: admin accounts and sample
// posts from a YAML fixture file, or generated posts for local testing.
// These helpers are intended for development and testing only.
package seed

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"

	"blogcms/internal/middleware"
	"blogcms/internal/models"
	"blogcms/internal/service"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/sample.yml
var fixtureFS embed.FS

const defaultFixture = "fixtures/sample.yml"

// AdminFixture describes one account to create.
type AdminFixture struct {
	Username string      `yaml:"username"`
	Password string      `yaml:"password"`
	Role     models.Role `yaml:"role"`
	FullName string      `yaml:"fullName"`
	Email    string      `yaml:"email"`
	Bio      string      `yaml:"bio"`
}

// PostFixture describes one post. Author is the username of an existing or
// fixture account.
type PostFixture struct {
	Title     string   `yaml:"title"`
	Author    string   `yaml:"author"`
	Excerpt   string   `yaml:"excerpt"`
	Content   string   `yaml:"content"`
	Thumbnail string   `yaml:"thumbnail"`
	Tags      []string `yaml:"tags"`
}

// Fixtures is the top-level document of a seed file.
type Fixtures struct {
	Admins []AdminFixture `yaml:"admins"`
	Posts  []PostFixture  `yaml:"posts"`
}

// Result summarizes what Apply changed.
type Result struct {
	AdminsCreated int
	AdminsSkipped int
	PostsCreated  int
	PostsSkipped  bool
}

// Load reads fixtures from path, or the built-in sample when path is empty.
func Load(path string) (*Fixtures, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = fixtureFS.ReadFile(defaultFixture)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML fixture document.
func Parse(data []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	for i, a := range fx.Admins {
		if a.Role == "" {
			fx.Admins[i].Role = models.RoleEditor
		}
	}
	return &fx, nil
}

// Seeder writes fixtures through the services so that every business rule
// (validation, hashing, tag normalization) applies to seeded data too.
type Seeder struct {
	admins *service.AdminService
	posts  *service.PostService
}

func NewSeeder(admins *service.AdminService, posts *service.PostService) *Seeder {
	return &Seeder{admins: admins, posts: posts}
}

// Apply creates missing fixture accounts, then the fixture posts. Posts are
// only written into an empty blog (no active posts) so repeated runs do not
// duplicate content.
func (s *Seeder) Apply(ctx context.Context, fx *Fixtures) (Result, error) {
	var res Result

	for _, a := range fx.Admins {
		created, err := s.ensureAccount(ctx, a)
		if err != nil {
			return res, fmt.Errorf("seed admin %q: %w", a.Username, err)
		}
		if created {
			res.AdminsCreated++
		} else {
			res.AdminsSkipped++
		}
	}

	existing, err := s.posts.ListActive(ctx)
	if err != nil {
		return res, err
	}
	if len(existing) > 0 {
		res.PostsSkipped = true
		middleware.Logger.InfoContext(ctx, "posts already present, skipping sample posts", slog.Int("active_posts", len(existing)))
		return res, nil
	}

	authors := map[string]uint{}
	for _, p := range fx.Posts {
		authorID, ok := authors[p.Author]
		if !ok {
			author, err := s.admins.GetByUsername(ctx, p.Author)
			if err != nil {
				return res, fmt.Errorf("seed post %q: author %q: %w", p.Title, p.Author, err)
			}
			authorID = author.ID
			authors[p.Author] = authorID
		}

		_, err := s.posts.Create(ctx, service.CreatePostInput{
			Title:     p.Title,
			Content:   p.Content,
			Excerpt:   p.Excerpt,
			Thumbnail: p.Thumbnail,
			Tags:      p.Tags,
			AuthorID:  authorID,
		})
		if err != nil {
			return res, fmt.Errorf("seed post %q: %w", p.Title, err)
		}
		res.PostsCreated++
	}

	return res, nil
}

func (s *Seeder) ensureAccount(ctx context.Context, a AdminFixture) (bool, error) {
	if _, err := s.admins.GetByUsername(ctx, a.Username); err == nil {
		return false, nil
	} else if !models.IsCode(err, models.CodeNotFound) {
		return false, err
	}

	admin, err := s.admins.CreateAccount(ctx, a.Username, a.Password, a.Role)
	if err != nil {
		return false, err
	}

	profile := service.ProfileInput{}
	if a.FullName != "" {
		profile.FullName = &a.FullName
	}
	if a.Email != "" {
		profile.Email = &a.Email
	}
	if a.Bio != "" {
		profile.Bio = &a.Bio
	}
	actor := service.Actor{ID: admin.ID, Role: admin.Role}
	if _, err := s.admins.UpdateProfile(ctx, actor, admin.ID, profile); err != nil {
		return false, err
	}
	return true, nil
}
