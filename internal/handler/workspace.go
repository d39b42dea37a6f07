package handler

import (
	"log/slog"
	"net/http"

	"thecrew/internal/domain/services"
	"thecrew/internal/httputil"
)

// WorkspaceHandler handles workspace and membership requests
type WorkspaceHandler struct {
	workspaces     services.WorkspaceService
	members        services.MemberService
	interrogations services.InterrogatorService
	logger         *slog.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(
	workspaces services.WorkspaceService,
	members services.MemberService,
	interrogations services.InterrogatorService,
	logger *slog.Logger,
) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaces:     workspaces,
		members:        members,
		interrogations: interrogations,
		logger:         logger,
	}
}

// updateWorkspaceDTO keeps description tri-state: absent, null, or a value
type updateWorkspaceDTO struct {
	Name        *string                 `json:"name,omitempty"`
	Description httputil.OptionalString `json:"description"`
}

// ListWorkspaces lists the workspaces the caller belongs to
// GET /api/workspaces
func (h *WorkspaceHandler) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	list, err := h.workspaces.ListWorkspaces(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, list)
}

// CreateWorkspace creates a workspace owned by the caller
// POST /api/workspaces
func (h *WorkspaceHandler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req services.CreateWorkspaceRequest
	if !decode(w, r, &req) {
		return
	}

	ws, err := h.workspaces.CreateWorkspace(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, ws)
}

// GetWorkspace returns one workspace
// GET /api/workspaces/{id}
func (h *WorkspaceHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}

	ws, err := h.workspaces.GetWorkspace(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, ws)
}

// UpdateWorkspace renames or re-describes a workspace
// PATCH /api/workspaces/{id}
func (h *WorkspaceHandler) UpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}

	var dto updateWorkspaceDTO
	if !decode(w, r, &dto) {
		return
	}

	ws, err := h.workspaces.UpdateWorkspace(r.Context(), httputil.GetUserID(r), id, &services.UpdateWorkspaceRequest{
		Name:        dto.Name,
		Description: toOptional(dto.Description.Present, dto.Description.Value),
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, ws)
}

// DeleteWorkspace deletes a workspace and everything in it
// DELETE /api/workspaces/{id}
func (h *WorkspaceHandler) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}

	if err := h.workspaces.DeleteWorkspace(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMembers lists workspace members with their roles
// GET /api/workspaces/{id}/members
func (h *WorkspaceHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}

	members, err := h.members.ListMembers(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, members)
}

// AddMember adds a registered user by email
// POST /api/workspaces/{id}/members
func (h *WorkspaceHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}

	var req services.AddMemberRequest
	if !decode(w, r, &req) {
		return
	}

	member, err := h.members.AddMember(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, member)
}

// UpdateMember changes a member's role
// PATCH /api/workspaces/{id}/members/{memberId}
func (h *WorkspaceHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}
	memberID, ok := PathParam(w, r, "memberId", "Member ID")
	if !ok {
		return
	}

	var req services.UpdateMemberRequest
	if !decode(w, r, &req) {
		return
	}

	member, err := h.members.UpdateMemberRole(r.Context(), httputil.GetUserID(r), id, memberID, &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, member)
}

// RemoveMember removes a member. Admins only.
// DELETE /api/workspaces/{id}/members/{memberId}
func (h *WorkspaceHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}
	memberID, ok := PathParam(w, r, "memberId", "Member ID")
	if !ok {
		return
	}

	if err := h.members.RemoveMember(r.Context(), httputil.GetUserID(r), id, memberID); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListInterrogations lists briefing sessions of a workspace, newest first
// GET /api/workspaces/{id}/interrogations
func (h *WorkspaceHandler) ListInterrogations(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}

	list, err := h.interrogations.List(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, list)
}
