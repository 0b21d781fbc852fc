package server

import (
	"blogcms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns the configured flags and their state for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	var adminID uint
	if identity, ok := middleware.CurrentIdentity(c); ok {
		adminID = identity.AdminID
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(adminID),
	})
}
