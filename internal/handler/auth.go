package handler

import (
	"log/slog"
	"net/http"
	"time"

	"thecrew/internal/auth"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/services"
	"thecrew/internal/httputil"
)

// AuthHandler handles registration, login and session lifecycle
type AuthHandler struct {
	accounts     services.AccountService
	sessions     *auth.SessionManager
	revocations  auth.Revocations
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	accounts services.AccountService,
	sessions *auth.SessionManager,
	revocations auth.Revocations,
	secureCookie bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		sessions:     sessions,
		revocations:  revocations,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type sessionResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Register creates an account and signs it in
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.accounts.Register(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	h.startSession(w, r, user, http.StatusCreated)
}

// Login verifies credentials and sets the session cookie
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.accounts.Login(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	h.startSession(w, r, user, http.StatusOK)
}

// Logout revokes the current session and clears the cookie
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := httputil.GetSessionID(r); sessionID != "" {
		// The token cannot outlive the configured TTL, so neither must its revocation
		if err := h.revocations.Revoke(r.Context(), sessionID, time.Now().Add(h.sessions.TTL())); err != nil {
			handleError(w, r, h.logger, err)
			return
		}
	}

	http.SetCookie(w, h.cookie("", -1))
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.GetUser(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	token, claims, err := h.sessions.Issue(user)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, h.cookie(token, int(h.sessions.TTL().Seconds())))
	httputil.RespondJSON(w, status, sessionResponse{
		User:      user,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

func (h *AuthHandler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
