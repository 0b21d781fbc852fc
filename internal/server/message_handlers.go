package server

import (
	"blogcms/internal/models"
	"blogcms/internal/service"

	"github.com/gofiber/fiber/v2"
)

type submitMessageRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SubmitMessage handles POST /api/messages
func (s *Server) SubmitMessage(c *fiber.Ctx) error {
	var req submitMessageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	msg, err := s.messageService.Submit(c.UserContext(), service.SubmitMessageInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Message sent successfully.",
		"data":    msg,
	})
}

// GetMessages handles GET /api/messages?kind=
func (s *Server) GetMessages(c *fiber.Ctx) error {
	messages, err := s.messageService.ListAll(c.UserContext(), c.Query("kind"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(messages)
}

// GetPublicComments handles GET /api/messages/public?postId=
func (s *Server) GetPublicComments(c *fiber.Ctx) error {
	messages, err := s.messageService.ListPublicByPost(c.UserContext(), c.Query("postId"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(messages)
}

// DeleteMessage handles DELETE /api/messages/:id
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.messageService.Delete(c.UserContext(), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Message deleted."})
}
