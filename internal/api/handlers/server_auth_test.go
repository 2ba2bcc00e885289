package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fertigation.io/farmwatch/internal/domain"
)

func TestSignupThenMe(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "Wanjiru", "email": "wanjiru@farm.example", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	session := decode[sessionResponse](t, w)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, domain.RoleFarmer, session.Profile.Role)
	assert.True(t, session.ExpiresAt.After(session.Profile.CreatedAt))

	w = h.do(http.MethodGet, "/auth/me", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me := decode[meResponse](t, w)
	assert.Equal(t, "wanjiru@farm.example", me.Profile.Email)
	assert.Contains(t, me.Permissions, "reading:create")
	assert.NotContains(t, me.Permissions, "alert:resolve")

	w = h.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "Other", "email": "wanjiru@farm.example", "password": "secret2",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_ALREADY_REGISTERED", decode[errorBody](t, w).Code)
}

func TestSignup_Validation(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/auth/signup", "", map[string]string{"name": "", "email": "nope", "password": "123"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "VALIDATION_FAILED", body.Code)
	assert.Len(t, body.FieldErrors, 3)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "Otieno", "email": "otieno@farm.example", "password": "hunter22",
	}).Code)

	w := h.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "otieno@farm.example", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode[errorBody](t, w).Code)

	w = h.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "nobody@farm.example", "password": "hunter22"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "otieno@farm.example", "password": "hunter22"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode[sessionResponse](t, w).Token)
}

func TestLogout_RevokesToken(t *testing.T) {
	h := newHarness(t)
	token := h.login(domain.RoleOfficer)

	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/auth/me", token, nil).Code)
	require.Equal(t, http.StatusNoContent, h.do(http.MethodPost, "/auth/logout", token, nil).Code)

	w := h.do(http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token revoked", decode[errorBody](t, w).Message)

	var actions []string
	for _, e := range h.mem.AuditEntries() {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, "profile.logout")
}

func TestNavigation(t *testing.T) {
	h := newHarness(t)

	names := func(nav navigationResponse) []string {
		out := make([]string, 0, len(nav.Destinations))
		for _, d := range nav.Destinations {
			out = append(out, d.Name)
		}
		return out
	}

	w := h.do(http.MethodGet, "/navigation", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	anon := decode[navigationResponse](t, w)
	assert.False(t, anon.Authenticated)
	assert.Equal(t, []string{"Home", "Contact"}, names(anon))
	assert.Empty(t, anon.Permissions)
	assert.Equal(t, "/contact", anon.Destinations[1].Path)

	farmer := decode[navigationResponse](t, h.do(http.MethodGet, "/navigation", h.login(domain.RoleFarmer), nil))
	assert.True(t, farmer.Authenticated)
	assert.Equal(t, domain.RoleFarmer, farmer.Role)
	assert.NotContains(t, names(farmer), "Admin")

	admin := decode[navigationResponse](t, h.do(http.MethodGet, "/navigation", h.login(domain.RoleAdmin), nil))
	assert.Contains(t, names(admin), "Admin")
	assert.Contains(t, admin.Permissions, "admin:view")
}

func TestNavigation_InvalidTokenIsAnonymous(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/navigation", "not-a-jwt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[navigationResponse](t, w).Authenticated)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/farms", "/readings", "/alerts", "/analytics", "/auth/me"} {
		w := h.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
