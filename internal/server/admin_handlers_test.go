package server

import (
	"fmt"
	"net/http"
	"testing"

	"blogcms/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileResponse struct {
	Message string       `json:"message"`
	Admin   models.Admin `json:"admin"`
}

func roleOf(t *testing.T, env *testEnv, token string, id uint) models.Role {
	t.Helper()
	resp, body := env.do(t, http.MethodGet, "/api/admin", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, a := range decode[[]models.Admin](t, body) {
		if a.ID == id {
			return a.Role
		}
	}
	t.Fatalf("admin %d not listed", id)
	return ""
}

func TestChangeRoleRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin, adminToken := env.account(t, "root", models.RoleAdmin)
	editor, editorToken := env.account(t, "writer", models.RoleEditor)
	path := fmt.Sprintf("/api/admin/%d/role", editor.ID)

	resp, _ := env.do(t, http.MethodPut, path, map[string]string{"role": "admin"}, editorToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, models.RoleEditor, roleOf(t, env, adminToken, editor.ID))

	resp, body := env.do(t, http.MethodPut, path, map[string]string{"role": "admin"}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, models.RoleAdmin, roleOf(t, env, adminToken, editor.ID))

	// Both list paths serve the same accounts.
	_, body = env.do(t, http.MethodGet, "/api/admins", nil, adminToken)
	assert.Len(t, decode[[]models.Admin](t, body), 2)
	assert.NotContains(t, string(body), "password")

	assert.Equal(t, models.RoleAdmin, roleOf(t, env, adminToken, admin.ID))
}

func TestChangeRoleRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.account(t, "root", models.RoleAdmin)
	editor, _ := env.account(t, "writer", models.RoleEditor)

	for _, role := range []string{"owner", "", "Admin"} {
		resp, body := env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/%d/role", editor.ID),
			map[string]string{"role": role}, adminToken)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, role)
		assert.Equal(t, models.CodeValidation, decode[models.ErrorResponse](t, body).Code)
	}
	assert.Equal(t, models.RoleEditor, roleOf(t, env, adminToken, editor.ID))

	resp, _ := env.do(t, http.MethodPut, "/api/admin/9999/role", map[string]string{"role": "editor"}, adminToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTokenSurvivesRoleChange(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.account(t, "root", models.RoleAdmin)
	editor, editorToken := env.account(t, "writer", models.RoleEditor)

	resp, _ := env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/%d/role", editor.ID),
		map[string]string{"role": "admin"}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Tokens are stateless: the old token keeps working with its old role
	// until the account signs in again.
	resp, _ = env.do(t, http.MethodGet, "/api/admin/me", nil, editorToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/admin", nil, editorToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "writer", "password": "password123"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fresh := decode[loginResponse](t, body)
	assert.Equal(t, models.RoleAdmin, fresh.User.Role)

	resp, _ = env.do(t, http.MethodGet, "/api/admin", nil, fresh.Token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTokenOfDeletedAccount(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.account(t, "root", models.RoleAdmin)
	editor, editorToken := env.account(t, "writer", models.RoleEditor)

	resp, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/%d", editor.ID), nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The token still authenticates, but the account is gone.
	resp, _ = env.do(t, http.MethodGet, "/api/admin/me", nil, editorToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/posts", map[string]any{"title": "Ghost"}, editorToken)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestDeleteAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin, adminToken := env.account(t, "root", models.RoleAdmin)
	editor, editorToken := env.account(t, "writer", models.RoleEditor)

	resp, body := env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/%d", admin.ID), nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "You can't delete yourself.", decode[models.ErrorResponse](t, body).Error)

	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/%d", admin.ID), nil, editorToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/%d", editor.ID), nil, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/%d", editor.ID), nil, adminToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body = env.do(t, http.MethodGet, "/api/admin", nil, adminToken)
	assert.Len(t, decode[[]models.Admin](t, body), 1)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	admin, adminToken := env.account(t, "root", models.RoleAdmin)
	editor, editorToken := env.account(t, "writer", models.RoleEditor)
	other, _ := env.account(t, "other", models.RoleEditor)

	// Owners may edit their own profile.
	resp, body := env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/%d/profile", editor.ID),
		map[string]string{"fullName": "Wendy Writer", "bio": "Writes things"}, editorToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	_, body = env.do(t, http.MethodGet, "/api/admin/me", nil, editorToken)
	me := decode[models.Admin](t, body)
	assert.Equal(t, "Wendy Writer", me.FullName)
	assert.Equal(t, "Writes things", me.Bio)

	// Absent fields are untouched, empty strings clear.
	resp, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/%d/profile", editor.ID),
		map[string]string{"bio": ""}, editorToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, body = env.do(t, http.MethodGet, "/api/admin/me", nil, editorToken)
	me = decode[models.Admin](t, body)
	assert.Equal(t, "Wendy Writer", me.FullName)
	assert.Empty(t, me.Bio)

	// Editors may not edit other accounts.
	resp, body = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/%d/profile", other.ID),
		map[string]string{"fullName": "Hijacked"}, editorToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, models.CodeForbidden, decode[models.ErrorResponse](t, body).Code)

	// Admins may edit anyone.
	resp, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/%d/profile", other.ID),
		map[string]string{"pronouns": "they/them"}, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Profile fields are stored as given, email included.
	resp, body = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/%d/profile", admin.ID),
		map[string]string{"email": "bob at home"}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bob at home", decode[profileResponse](t, body).Admin.Email)

	resp, _ = env.do(t, http.MethodPut, "/api/admin/9999/profile",
		map[string]string{"bio": "x"}, adminToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateProfileChangesPassword(t *testing.T) {
	env := newTestEnv(t)
	editor, token := env.account(t, "writer", models.RoleEditor)

	resp, _ := env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/%d/profile", editor.ID),
		map[string]string{"password": "short"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/%d/profile", editor.ID),
		map[string]string{"password": "brand-new-password"}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "writer", "password": "password123"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "writer", "password": "brand-new-password"}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
