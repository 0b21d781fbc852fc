package service

import (
	"context"
	"log/slog"

	"blogcms/internal/database"
	"blogcms/internal/middleware"
	"blogcms/internal/models"
	"blogcms/internal/repository"
	"blogcms/internal/validation"
)

// Actor is the authenticated caller of an account operation.
type Actor struct {
	ID   uint
	Role models.Role
}

type AdminService struct {
	admins repository.AdminRepository
}

// ProfileInput carries a partial profile update. Nil fields are left
// unchanged; an empty string clears the field.
type ProfileInput struct {
	FullName      *string
	Bio           *string
	Email         *string
	Twitter       *string
	GitHub        *string
	LinkedIn      *string
	Pronouns      *string
	ProfilePicURL *string
	Password      *string
}

func NewAdminService(admins repository.AdminRepository) *AdminService {
	return &AdminService{admins: admins}
}

// ListAll returns every account.
func (s *AdminService) ListAll(ctx context.Context) ([]models.Admin, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return admins, nil
}

func (s *AdminService) Get(ctx context.Context, id uint) (*models.Admin, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Admin", id)
	}
	return admin, nil
}

// GetByUsername returns the account named username.
func (s *AdminService) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		return nil, mapRepoError(err, "Admin", username)
	}
	return admin, nil
}

// CreateAccount creates an account with an explicit role. Used by operator
// tooling; self-registration goes through AuthService.Register.
func (s *AdminService) CreateAccount(ctx context.Context, username, password string, role models.Role) (*models.Admin, error) {
	return createAccount(ctx, s.admins, username, password, role)
}

// UpdateProfile changes the profile of account id. Only the owner or an
// admin may do so. Profile fields are stored as given; only a new password
// is validated.
func (s *AdminService) UpdateProfile(ctx context.Context, actor Actor, id uint, in ProfileInput) (*models.Admin, error) {
	if actor.ID != id && actor.Role != models.RoleAdmin {
		return nil, models.NewForbiddenError("You can only update your own profile")
	}

	changes := &models.Admin{}
	var columns []string
	set := func(value *string, dst *string, column string) {
		if value != nil {
			*dst = *value
			columns = append(columns, column)
		}
	}
	set(in.FullName, &changes.FullName, "full_name")
	set(in.Bio, &changes.Bio, "bio")
	set(in.Email, &changes.Email, "email")
	set(in.Twitter, &changes.Twitter, "twitter")
	set(in.GitHub, &changes.GitHub, "github")
	set(in.LinkedIn, &changes.LinkedIn, "linkedin")
	set(in.Pronouns, &changes.Pronouns, "pronouns")
	set(in.ProfilePicURL, &changes.ProfilePicURL, "profile_pic_url")

	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		changes.Password = hash
		columns = append(columns, "password")
	}

	if len(columns) > 0 {
		if err := s.admins.Update(ctx, id, changes, columns); err != nil {
			return nil, mapRepoError(err, "Admin", id)
		}
		middleware.Logger.InfoContext(ctx, "admin profile updated",
			slog.Uint64("target_admin_id", uint64(id)),
			slog.Int("fields", len(columns)),
		)
	}

	return s.Get(ctx, id)
}

// ChangeRole sets the role of account id. Tokens already issued keep the
// role they were signed with until they expire.
func (s *AdminService) ChangeRole(ctx context.Context, id uint, role models.Role) (*models.Admin, error) {
	if !role.Valid() {
		return nil, models.NewValidationError("Invalid role")
	}
	if err := s.admins.UpdateRole(ctx, id, role); err != nil {
		return nil, mapRepoError(err, "Admin", id)
	}
	middleware.Logger.InfoContext(ctx, "admin role changed",
		slog.Uint64("target_admin_id", uint64(id)),
		slog.String("role", string(role)),
	)
	return s.Get(ctx, id)
}

// Delete removes account id. An actor can never delete their own account.
func (s *AdminService) Delete(ctx context.Context, actor Actor, id uint) error {
	if actor.ID == id {
		return models.NewValidationError("You can't delete yourself.")
	}
	if err := s.admins.Delete(ctx, id); err != nil {
		return mapRepoError(err, "Admin", id)
	}
	middleware.Logger.InfoContext(ctx, "admin deleted", slog.Uint64("target_admin_id", uint64(id)))
	return nil
}

// ResetPassword replaces the password of the named account.
func (s *AdminService) ResetPassword(ctx context.Context, username, password string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return models.NewValidationError(err.Error())
	}
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		return mapRepoError(err, "Admin", username)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.admins.UpdatePassword(ctx, admin.ID, hash); err != nil {
		return mapRepoError(err, "Admin", admin.ID)
	}
	middleware.Logger.InfoContext(ctx, "admin password reset", slog.Uint64("target_admin_id", uint64(admin.ID)))
	return nil
}

// SetRoleByUsername changes the role of the named account.
func (s *AdminService) SetRoleByUsername(ctx context.Context, username string, role models.Role) (*models.Admin, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		return nil, mapRepoError(err, "Admin", username)
	}
	return s.ChangeRole(ctx, admin.ID, role)
}

// EnsureAdmin creates an admin account named username unless an account by
// that name already exists. It reports whether it created one.
func (s *AdminService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.admins.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !database.IsNotFound(err) {
		return false, models.NewStorageError(err)
	}
	if _, err := createAccount(ctx, s.admins, username, password, models.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}
