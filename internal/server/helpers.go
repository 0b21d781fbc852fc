package server

import (
	"errors"
	"strconv"

	"blogcms/internal/middleware"
	"blogcms/internal/models"
	"blogcms/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter as a positive integer id.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithAppError(c, models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseBody decodes the JSON request body into dst.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithAppError(c, models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// currentActor returns the authenticated caller as a service actor.
func currentActor(c *fiber.Ctx) (service.Actor, bool) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{ID: identity.AdminID, Role: identity.Role}, true
}
