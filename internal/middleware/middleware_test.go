package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thecrew/internal/auth"
	"thecrew/internal/domain/models"
	"thecrew/internal/httputil"
	"thecrew/internal/repository/memory"
)

const testSecret = "middleware-secret-middleware-secret"

// stubVerifier accepts one fixed token
type stubVerifier struct {
	token string
	email string
}

func (v *stubVerifier) VerifyToken(token string) (*models.ExternalClaims, error) {
	if token != v.token {
		return nil, errors.New("bad token")
	}
	return &models.ExternalClaims{Email: v.email}, nil
}

func (v *stubVerifier) Close() error { return nil }

type authFixture struct {
	sessions    *auth.SessionManager
	revocations *auth.MemoryRevocations
	repos       *memory.Repositories
	user        *models.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	sessions, err := auth.NewSessionManager(testSecret, time.Hour)
	require.NoError(t, err)
	repos := memory.NewRepositories()
	user := &models.User{Email: "bob@example.com", Name: "Bob"}
	require.NoError(t, repos.Users.Create(context.Background(), user))
	return &authFixture{
		sessions:    sessions,
		revocations: auth.NewMemoryRevocations(),
		repos:       repos,
		user:        user,
	}
}

func (f *authFixture) serve(external auth.JWTVerifier, req *http.Request) (*httptest.ResponseRecorder, string) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httputil.GetUserID(r)
		w.WriteHeader(http.StatusNoContent)
	})
	authn := NewAuthenticator(f.sessions, f.revocations, external, f.repos.Users, logger)
	rec := httptest.NewRecorder()
	authn.Require(next).ServeHTTP(rec, req)
	return rec, seen
}

func TestRequire_SessionCookie(t *testing.T) {
	f := newAuthFixture(t)
	token, _, err := f.sessions.Issue(f.user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rec, seen := f.serve(nil, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, f.user.ID, seen)
}

func TestRequire_RevokedSession(t *testing.T) {
	f := newAuthFixture(t)
	token, claims, err := f.sessions.Issue(f.user)
	require.NoError(t, err)
	require.NoError(t, f.revocations.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec, seen := f.serve(nil, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, seen)
}

func TestRequire_MissingCredentials(t *testing.T) {
	f := newAuthFixture(t)

	rec, _ := f.serve(nil, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"unauthorized"`)
}

func TestRequire_ExternalToken(t *testing.T) {
	f := newAuthFixture(t)

	t.Run("known email", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer idp-token")
		rec, seen := f.serve(&stubVerifier{token: "idp-token", email: "Bob@Example.com"}, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, f.user.ID, seen)
	})

	t.Run("unknown email", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer idp-token")
		rec, _ := f.serve(&stubVerifier{token: "idp-token", email: "stranger@example.com"}, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejected token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer forged")
		rec, _ := f.serve(&stubVerifier{token: "idp-token", email: "bob@example.com"}, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recovery(logger)(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/workspaces", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"internal"`)
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "/api/workspaces")
}

func TestRequestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondError(w, http.StatusNotFound, "missing")
	})

	rec := httptest.NewRecorder()
	RequestLog(logger)(Recovery(logger)(notFound)).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/x", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	line := buf.String()
	assert.True(t, strings.Contains(line, `"level":"WARN"`), line)
	assert.Contains(t, line, `"method":"DELETE"`)
	assert.Contains(t, line, `"status":404`)
}
