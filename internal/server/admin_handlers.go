package server

import (
	"blogcms/internal/models"
	"blogcms/internal/service"

	"github.com/gofiber/fiber/v2"
)

type changeRoleRequest struct {
	Role models.Role `json:"role"`
}

type updateProfileRequest struct {
	FullName      *string `json:"fullName"`
	Bio           *string `json:"bio"`
	Email         *string `json:"email"`
	Twitter       *string `json:"twitter"`
	GitHub        *string `json:"github"`
	LinkedIn      *string `json:"linkedin"`
	Pronouns      *string `json:"pronouns"`
	ProfilePicURL *string `json:"profilePicUrl"`
	Password      *string `json:"password"`
}

// ListAdmins handles GET /api/admin and GET /api/admins
func (s *Server) ListAdmins(c *fiber.Ctx) error {
	admins, err := s.adminService.ListAll(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(admins)
}

// GetMe handles GET /api/admin/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return models.RespondWithAppError(c, models.NewUnauthorizedError("Authentication required"))
	}

	admin, err := s.adminService.Get(c.UserContext(), actor.ID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(admin)
}

// ChangeRole handles PUT /api/admin/:id/role
func (s *Server) ChangeRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req changeRoleRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	admin, err := s.adminService.ChangeRole(c.UserContext(), id, req.Role)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role updated", "admin": admin})
}

// UpdateProfile handles PUT /api/admin/:id/profile
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	actor, ok := currentActor(c)
	if !ok {
		return models.RespondWithAppError(c, models.NewUnauthorizedError("Authentication required"))
	}

	var req updateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	admin, err := s.adminService.UpdateProfile(c.UserContext(), actor, id, service.ProfileInput{
		FullName:      req.FullName,
		Bio:           req.Bio,
		Email:         req.Email,
		Twitter:       req.Twitter,
		GitHub:        req.GitHub,
		LinkedIn:      req.LinkedIn,
		Pronouns:      req.Pronouns,
		ProfilePicURL: req.ProfilePicURL,
		Password:      req.Password,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile updated", "admin": admin})
}

// DeleteAdmin handles DELETE /api/admin/:id
func (s *Server) DeleteAdmin(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	actor, ok := currentActor(c)
	if !ok {
		return models.RespondWithAppError(c, models.NewUnauthorizedError("Authentication required"))
	}

	if err := s.adminService.Delete(c.UserContext(), actor, id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Admin deleted successfully."})
}
