package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thecrew/internal/auth"
)

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	s := newTestServer(t)

	for _, token := range []string{"", "not-a-token"} {
		rec := s.do(http.MethodGet, "/api/workspaces", token, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized", problemOf(t, rec).Kind)
	}
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "Bob@Example.com", "password": "correct horse", "name": "Bob",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Contains(t, rec.Body.String(), `"email":"bob@example.com"`)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.register("bob@example.com")

	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "BOB@example.com", "password": "another one", "name": "Bob again",
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", problemOf(t, rec).Kind)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	s := newTestServer(t)
	s.register("bob@example.com")

	wrongPassword := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "bob@example.com", "password": "wrong password",
	})
	unknownEmail := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "wrong password",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, wrongPassword.Code, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, "invalid_credentials", problemOf(t, wrongPassword).Kind)
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)
	_, userID := s.register("bob@example.com")

	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "bob@example.com", "password": "correct horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session sessionResponse
	decodeInto(t, rec, &session)

	me := s.do(http.MethodGet, "/api/auth/me", session.Token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), userID)
}

func TestLogoutRevokesSession(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("bob@example.com")

	rec := s.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	again := s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, again.Code)
	assert.Equal(t, "session has been revoked", problemOf(t, again).Message)
}

func TestInvalidJSONBody(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("bob@example.com")

	rec := s.do(http.MethodPost, "/api/workspaces", token, "{not json")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	p := problemOf(t, rec)
	assert.Equal(t, "validation", p.Kind)
	assert.Equal(t, "Invalid request body", p.Message)
}
