package handler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"thecrew/internal/config"
	"thecrew/internal/domain"
	"thecrew/internal/domain/services"
	"thecrew/internal/httputil"
)

// multipartOverhead leaves room for boundaries and headers around the file part
const multipartOverhead = 1 << 20

// InterrogatorHandler handles the AI briefing flow
type InterrogatorHandler struct {
	interrogator services.InterrogatorService
	logger       *slog.Logger
}

// NewInterrogatorHandler creates a new interrogator handler
func NewInterrogatorHandler(interrogator services.InterrogatorService, logger *slog.Logger) *InterrogatorHandler {
	return &InterrogatorHandler{interrogator: interrogator, logger: logger}
}

// Summarize starts a briefing session from uploaded materials
// POST /api/interrogator/summarize
func (h *InterrogatorHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req services.SummarizeRequest
	if !decode(w, r, &req) {
		return
	}

	step, err := h.interrogator.Summarize(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, step)
}

// Chat answers the pending question and returns the next one
// POST /api/interrogator/chat
func (h *InterrogatorHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req services.ChatRequest
	if !decode(w, r, &req) {
		return
	}

	step, err := h.interrogator.Chat(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, step)
}

// GenerateFinal drafts the production brief
// POST /api/interrogator/generate-final
func (h *InterrogatorHandler) GenerateFinal(w http.ResponseWriter, r *http.Request) {
	var req services.GenerateFinalRequest
	if !decode(w, r, &req) {
		return
	}

	it, err := h.interrogator.GenerateFinal(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, it)
}

// SaveFinal saves the brief and optionally turns its checklist into tasks
// POST /api/interrogator/save-final
func (h *InterrogatorHandler) SaveFinal(w http.ResponseWriter, r *http.Request) {
	var req services.SaveFinalRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.interrogator.SaveFinal(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// GetInterrogation returns a persisted session
// GET /api/interrogator/{id}
func (h *InterrogatorHandler) GetInterrogation(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Interrogation ID")
	if !ok {
		return
	}

	it, err := h.interrogator.Get(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, it)
}

// UploadText extracts plain text from a briefing document
// POST /api/interrogator/upload-text (multipart, field "file")
func (h *InterrogatorHandler) UploadText(w http.ResponseWriter, r *http.Request) {
	name, data, ok := h.readFile(w, r)
	if !ok {
		return
	}

	extracted, err := h.interrogator.UploadText(r.Context(), name, data)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, extracted)
}

// Transcribe converts a voice note to text
// POST /api/interrogator/transcribe (multipart, field "file")
func (h *InterrogatorHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	name, data, ok := h.readFile(w, r)
	if !ok {
		return
	}

	text, err := h.interrogator.Transcribe(r.Context(), name, bytes.NewReader(data))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (h *InterrogatorHandler) readFile(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	name, data, err := httputil.ReadFormFile(w, r, "file", config.MaxBriefingFileBytes+multipartOverhead)
	if err != nil {
		if errors.Is(err, httputil.ErrFileTooLarge) {
			httputil.RespondKindError(w, http.StatusRequestEntityTooLarge, string(domain.KindValidation),
				fmt.Sprintf("file exceeds the %d MB limit", config.MaxBriefingFileBytes>>20))
			return "", nil, false
		}
		httputil.RespondKindError(w, http.StatusBadRequest, string(domain.KindValidation), err.Error())
		return "", nil, false
	}
	if int64(len(data)) > config.MaxBriefingFileBytes {
		httputil.RespondKindError(w, http.StatusRequestEntityTooLarge, string(domain.KindValidation),
			fmt.Sprintf("file exceeds the %d MB limit", config.MaxBriefingFileBytes>>20))
		return "", nil, false
	}
	return name, data, true
}
