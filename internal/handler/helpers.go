package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"thecrew/internal/domain"
	"thecrew/internal/domain/services"
	"thecrew/internal/httputil"
)

// handleError converts domain errors to problem documents carrying their kind.
// Errors without a kind are logged and answered with a generic 500.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondKindError(w, httpErr.StatusCode(), string(httpErr.Kind()), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondKindError(w, http.StatusBadRequest, string(domain.KindValidation), err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondKindError(w, http.StatusNotFound, string(domain.KindNotFound), err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondKindError(w, http.StatusConflict, string(domain.KindConflict), err.Error())
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the response
		logger.Debug("request canceled", "path", r.URL.Path)
	default:
		logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		httputil.RespondKindError(w, http.StatusInternalServerError, string(domain.KindInternal), "internal server error")
	}
}

// decode parses the JSON body, answering 400 itself on failure
func decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		httputil.RespondKindError(w, http.StatusBadRequest, string(domain.KindValidation), "Invalid request body")
		return false
	}
	return true
}

// PathParam returns a required path wildcard, answering 400 when it is empty
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondKindError(w, http.StatusBadRequest, string(domain.KindValidation), label+" is required")
		return "", false
	}
	return value, true
}

// toOptional maps a JSON tri-state field onto the service-level Optional
func toOptional[T any](present bool, value *T) services.Optional[T] {
	return services.Optional[T]{Present: present, Value: value}
}
