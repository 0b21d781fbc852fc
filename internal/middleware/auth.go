// Package middleware provides authentication, authorization and request
// instrumentation middleware for the application.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"blogcms/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// TokenIssuer is the "iss" claim of every issued token.
	TokenIssuer = "blogcms-api"
	// TokenAudience is the "aud" claim of every issued token.
	TokenAudience = "blogcms-admin"

	localsAdminID  = "adminID"
	localsIdentity = "identity"
)

// ErrInvalidToken is returned by ParseToken for any token that fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload carried by admin tokens.
type Claims struct {
	Role     models.Role `json:"role"`
	Username string      `json:"username"`
	jwt.RegisteredClaims
}

// Identity is the verified caller attached to a request.
type Identity struct {
	AdminID  uint
	Role     models.Role
	Username string
}

// HasRole reports whether the identity holds one of roles.
func (i Identity) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// TokenManager issues and verifies HS256 admin tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a TokenManager signing with secret. Tokens expire after ttl.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken signs a token for admin carrying its id and current role.
func (m *TokenManager) IssueToken(admin *models.Admin) (string, error) {
	now := m.now()
	claims := Claims{
		Role:     admin.Role,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(admin.ID), 10),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies tokenString and returns the identity it carries.
func (m *TokenManager) ParseToken(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || id == 0 {
		return Identity{}, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return Identity{}, ErrInvalidToken
	}

	return Identity{AdminID: uint(id), Role: claims.Role, Username: claims.Username}, nil
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func (m *TokenManager) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return models.RespondWithAppError(c, models.NewUnauthorizedError("Authorization header required"))
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || tokenString == "" {
			return models.RespondWithAppError(c, models.NewUnauthorizedError("Invalid authorization header format"))
		}

		identity, err := m.ParseToken(tokenString)
		if err != nil {
			return models.RespondWithAppError(c, models.NewUnauthorizedError("Invalid or expired token"))
		}

		c.Locals(localsAdminID, identity.AdminID)
		c.Locals(localsIdentity, identity)
		c.SetUserContext(context.WithValue(c.UserContext(), AdminIDKey, identity.AdminID))

		return c.Next()
	}
}

// RoleRequired rejects callers whose token role is not one of roles.
// It must run after AuthRequired.
func RoleRequired(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return models.RespondWithAppError(c, models.NewUnauthorizedError("Authentication required"))
		}
		if !identity.HasRole(roles...) {
			return models.RespondWithAppError(c, models.NewForbiddenError("Insufficient permissions"))
		}
		return c.Next()
	}
}

// CurrentIdentity returns the identity stored by AuthRequired.
func CurrentIdentity(c *fiber.Ctx) (Identity, bool) {
	identity, ok := c.Locals(localsIdentity).(Identity)
	return identity, ok
}
