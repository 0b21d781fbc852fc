package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"blogcms/internal/database"
	"blogcms/internal/featureflags"
	"blogcms/internal/middleware"
	"blogcms/internal/models"
	"blogcms/internal/repository"
	"blogcms/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for new password hashes.
var BcryptCost = bcrypt.DefaultCost

// dummyHash is compared against when a login names an unknown account so
// that both failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("blogcms-dummy-password"), bcrypt.MinCost)

// TokenIssuer signs access tokens for authenticated admins.
type TokenIssuer interface {
	IssueToken(admin *models.Admin) (string, error)
}

type AuthService struct {
	admins repository.AdminRepository
	tokens TokenIssuer
	flags  *featureflags.Manager
}

func NewAuthService(admins repository.AdminRepository, tokens TokenIssuer, flags *featureflags.Manager) *AuthService {
	return &AuthService{admins: admins, tokens: tokens, flags: flags}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Register opens a new editor account. It is refused with 403 while the
// registration_closed flag is on.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.Admin, error) {
	if s.flags.On(featureflags.RegistrationClosed) {
		return nil, models.NewForbiddenError("Registration is closed")
	}
	return createAccount(ctx, s.admins, username, password, models.RoleEditor)
}

// Login verifies credentials and returns a signed token with the account.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, models.NewValidationError("Username and password are required")
	}

	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if !database.IsNotFound(err) {
			return "", nil, models.NewStorageError(err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", nil, models.NewUnauthorizedError("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		middleware.Logger.WarnContext(ctx, "login failed", slog.Uint64("admin_id", uint64(admin.ID)))
		return "", nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.tokens.IssueToken(admin)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}

	middleware.Logger.InfoContext(ctx, "admin logged in", slog.Uint64("admin_id", uint64(admin.ID)))
	return token, admin, nil
}

// createAccount validates and stores a new account with role.
func createAccount(ctx context.Context, admins repository.AdminRepository, username, password string, role models.Role) (*models.Admin, error) {
	username = strings.TrimSpace(username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if !role.Valid() {
		return nil, models.NewValidationError("role must be one of: admin, editor")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	admin := &models.Admin{Username: username, Password: hash, Role: role}
	if err := admins.Create(ctx, admin); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, models.NewValidationError("Username already exists")
		}
		return nil, models.NewStorageError(err)
	}

	middleware.Logger.InfoContext(ctx, "admin account created",
		slog.Uint64("admin_id", uint64(admin.ID)),
		slog.String("role", string(role)),
	)
	return admin, nil
}
