package handler

import (
	"log/slog"
	"net/http"

	"thecrew/internal/domain/services"
	"thecrew/internal/httputil"
)

// FolderHandler handles folder and tree requests
type FolderHandler struct {
	folders services.FolderService
	files   services.FileService
	tree    services.TreeService
	logger  *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folders services.FolderService, files services.FileService, tree services.TreeService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folders: folders,
		files:   files,
		tree:    tree,
		logger:  logger,
	}
}

// ListFolders returns the flat folder list
// GET /api/workspaces/{id}/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}

	folders, err := h.folders.ListFolders(r.Context(), httputil.GetUserID(r), workspaceID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folders)
}

// CreateFolder creates a folder under an optional parent
// POST /api/workspaces/{id}/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}

	var req services.CreateFolderRequest
	if !decode(w, r, &req) {
		return
	}
	req.WorkspaceID = workspaceID

	folder, err := h.folders.CreateFolder(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder returns a folder with its breadcrumb path
// GET /api/workspaces/{id}/folders/{folderId}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}
	folderID, ok := PathParam(w, r, "folderId", "Folder ID")
	if !ok {
		return
	}

	folder, err := h.folders.GetFolder(r.Context(), httputil.GetUserID(r), workspaceID, folderID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// RenameFolder renames a folder
// PATCH /api/workspaces/{id}/folders/{folderId}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}
	folderID, ok := PathParam(w, r, "folderId", "Folder ID")
	if !ok {
		return
	}

	var req services.RenameFolderRequest
	if !decode(w, r, &req) {
		return
	}

	folder, err := h.folders.RenameFolder(r.Context(), httputil.GetUserID(r), workspaceID, folderID, &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder with its subtree and files
// DELETE /api/workspaces/{id}/folders/{folderId}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}
	folderID, ok := PathParam(w, r, "folderId", "Folder ID")
	if !ok {
		return
	}

	if err := h.folders.DeleteFolder(r.Context(), httputil.GetUserID(r), workspaceID, folderID); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFolderFiles lists the files directly inside a folder
// GET /api/workspaces/{id}/folders/{folderId}/files
func (h *FolderHandler) ListFolderFiles(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}
	folderID, ok := PathParam(w, r, "folderId", "Folder ID")
	if !ok {
		return
	}

	files, err := h.files.ListFiles(r.Context(), httputil.GetUserID(r), workspaceID, folderID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, files)
}

// GetTree returns the nested folder and file tree
// GET /api/workspaces/{id}/tree
func (h *FolderHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}

	tree, err := h.tree.GetWorkspaceTree(r.Context(), httputil.GetUserID(r), workspaceID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tree)
}
