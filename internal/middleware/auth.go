package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"thecrew/internal/auth"
	"thecrew/internal/domain"
	"thecrew/internal/domain/repositories"
	"thecrew/internal/httputil"
)

// Authenticator resolves the caller from the session cookie or a bearer token.
//
// Session tokens issued by this service are checked first. When an external
// identity provider is configured, bearer tokens it signed are accepted too and
// mapped to the local account with the same email.
type Authenticator struct {
	sessions    *auth.SessionManager
	revocations auth.Revocations
	external    auth.JWTVerifier // nil disables IdP tokens
	users       repositories.UserRepository
	logger      *slog.Logger
}

func NewAuthenticator(
	sessions *auth.SessionManager,
	revocations auth.Revocations,
	external auth.JWTVerifier,
	users repositories.UserRepository,
	logger *slog.Logger,
) *Authenticator {
	return &Authenticator{
		sessions:    sessions,
		revocations: revocations,
		external:    external,
		users:       users,
		logger:      logger,
	}
}

// Require rejects requests without valid credentials with 401
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := a.sessions.Verify(token)
		if err == nil {
			revoked, err := a.revocations.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				a.logger.Error("revocation check failed", "error", err, "path", r.URL.Path)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if revoked {
				httputil.RespondError(w, http.StatusUnauthorized, "session has been revoked")
				return
			}
			r = httputil.WithUserID(r, claims.GetUserID())
			r = httputil.WithSession(r, claims.ID)
			next.ServeHTTP(w, r)
			return
		}

		if a.external == nil {
			httputil.RespondError(w, http.StatusUnauthorized, err.Error())
			return
		}

		ext, extErr := a.external.VerifyToken(token)
		if extErr != nil {
			a.logger.Debug("bearer token rejected", "error", extErr, "path", r.URL.Path)
			httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		user, err := a.users.GetByEmail(r.Context(), strings.ToLower(ext.Email))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				httputil.RespondError(w, http.StatusUnauthorized, "no account is registered for this identity")
				return
			}
			a.logger.Error("user lookup failed", "error", err, "path", r.URL.Path)
			httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		next.ServeHTTP(w, httputil.WithUserID(r, user.ID))
	})
}

// tokenFromRequest prefers the session cookie over the Authorization header
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
