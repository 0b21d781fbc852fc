package server

import (
	"blogcms/internal/middleware"
	"blogcms/internal/models"
	"blogcms/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Excerpt   string   `json:"excerpt"`
	Thumbnail string   `json:"thumbnail"`
	Tags      []string `json:"tags"`
}

// Absent JSON fields stay nil and are left unchanged.
type updatePostRequest struct {
	Title     *string   `json:"title"`
	Content   *string   `json:"content"`
	Excerpt   *string   `json:"excerpt"`
	Thumbnail *string   `json:"thumbnail"`
	Tags      *[]string `json:"tags"`
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListActive(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// GetTrashedPosts handles GET /api/posts/trash/all
func (s *Server) GetTrashedPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListTrashed(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetActive(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// RecordPostView handles PUT /api/posts/:id/view
func (s *Server) RecordPostView(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	views, err := s.postService.RecordView(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"views": views})
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	identity, _ := middleware.CurrentIdentity(c)

	var req createPostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.Create(c.UserContext(), service.CreatePostInput{
		Title:     req.Title,
		Content:   req.Content,
		Excerpt:   req.Excerpt,
		Thumbnail: req.Thumbnail,
		Tags:      req.Tags,
		AuthorID:  identity.AdminID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req updatePostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.Update(c.UserContext(), id, service.UpdatePostInput{
		Title:     req.Title,
		Content:   req.Content,
		Excerpt:   req.Excerpt,
		Thumbnail: req.Thumbnail,
		Tags:      req.Tags,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// SoftDeletePost handles PUT /api/posts/:id/delete
func (s *Server) SoftDeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.SoftDelete(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post moved to trash", "post": post})
}

// RestorePost handles PUT /api/posts/:id/restore
func (s *Server) RestorePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Restore(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post restored", "post": post})
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.PermanentDelete(c.UserContext(), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post permanently deleted"})
}
