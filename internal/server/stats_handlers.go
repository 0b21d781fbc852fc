package server

import (
	"blogcms/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetStats handles GET /api/stats
func (s *Server) GetStats(c *fiber.Ctx) error {
	stats, err := s.statsService.Get(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(stats)
}
