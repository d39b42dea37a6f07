package handler

import (
	"log/slog"
	"net/http"

	"thecrew/internal/domain/services"
	"thecrew/internal/httputil"
)

// FileHandler handles file metadata and upload URL requests
type FileHandler struct {
	files   services.FileService
	uploads services.UploadService
	logger  *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(files services.FileService, uploads services.UploadService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		files:   files,
		uploads: uploads,
		logger:  logger,
	}
}

// RequestUploadURL issues a presigned PUT for a direct upload
// POST /api/uploads/request-url
func (h *FileHandler) RequestUploadURL(w http.ResponseWriter, r *http.Request) {
	var req services.UploadURLRequest
	if !decode(w, r, &req) {
		return
	}

	ticket, err := h.uploads.RequestUploadURL(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, ticket)
}

// ListFiles lists every file in the workspace
// GET /api/workspaces/{id}/files
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}

	files, err := h.files.ListWorkspaceFiles(r.Context(), httputil.GetUserID(r), workspaceID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, files)
}

// RecordFile stores metadata once the client finished its upload
// POST /api/workspaces/{id}/files
func (h *FileHandler) RecordFile(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}

	var req services.RecordFileRequest
	if !decode(w, r, &req) {
		return
	}
	req.WorkspaceID = workspaceID

	file, err := h.files.RecordFile(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, file)
}

// GetFile returns file metadata with a read URL
// GET /api/workspaces/{id}/files/{fileId}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}
	fileID, ok := PathParam(w, r, "fileId", "File ID")
	if !ok {
		return
	}

	file, err := h.files.GetFile(r.Context(), httputil.GetUserID(r), workspaceID, fileID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile removes file metadata and the stored object
// DELETE /api/workspaces/{id}/files/{fileId}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}
	fileID, ok := PathParam(w, r, "fileId", "File ID")
	if !ok {
		return
	}

	if err := h.files.DeleteFile(r.Context(), httputil.GetUserID(r), workspaceID, fileID); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
