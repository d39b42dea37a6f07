package handler

import "net/http"

// Handlers bundles every route handler
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	Workspaces   *WorkspaceHandler
	Folders      *FolderHandler
	Files        *FileHandler
	Tasks        *TaskHandler
	Interrogator *InterrogatorHandler
}

// NewRouter registers all routes. requireAuth wraps everything except health, register and login.
func NewRouter(h Handlers, requireAuth func(http.Handler) http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	private := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, requireAuth(fn))
	}

	// Health check
	mux.HandleFunc("GET /health", h.Health.HealthCheck)

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	private("POST /api/auth/logout", h.Auth.Logout)
	private("GET /api/auth/me", h.Auth.Me)

	// Workspace routes
	private("GET /api/workspaces", h.Workspaces.ListWorkspaces)
	private("POST /api/workspaces", h.Workspaces.CreateWorkspace)
	private("GET /api/workspaces/{id}", h.Workspaces.GetWorkspace)
	private("PATCH /api/workspaces/{id}", h.Workspaces.UpdateWorkspace)
	private("DELETE /api/workspaces/{id}", h.Workspaces.DeleteWorkspace)
	private("GET /api/workspaces/{id}/interrogations", h.Workspaces.ListInterrogations)

	// Member routes
	private("GET /api/workspaces/{id}/members", h.Workspaces.ListMembers)
	private("POST /api/workspaces/{id}/members", h.Workspaces.AddMember)
	private("PATCH /api/workspaces/{id}/members/{memberId}", h.Workspaces.UpdateMember)
	private("DELETE /api/workspaces/{id}/members/{memberId}", h.Workspaces.RemoveMember)

	// Folder routes
	private("GET /api/workspaces/{id}/folders", h.Folders.ListFolders)
	private("POST /api/workspaces/{id}/folders", h.Folders.CreateFolder)
	private("GET /api/workspaces/{id}/folders/{folderId}", h.Folders.GetFolder)
	private("PATCH /api/workspaces/{id}/folders/{folderId}", h.Folders.RenameFolder)
	private("DELETE /api/workspaces/{id}/folders/{folderId}", h.Folders.DeleteFolder)
	private("GET /api/workspaces/{id}/folders/{folderId}/files", h.Folders.ListFolderFiles)
	private("GET /api/workspaces/{id}/tree", h.Folders.GetTree)

	// File routes
	private("POST /api/uploads/request-url", h.Files.RequestUploadURL)
	private("GET /api/workspaces/{id}/files", h.Files.ListFiles)
	private("POST /api/workspaces/{id}/files", h.Files.RecordFile)
	private("GET /api/workspaces/{id}/files/{fileId}", h.Files.GetFile)
	private("DELETE /api/workspaces/{id}/files/{fileId}", h.Files.DeleteFile)

	// Task routes
	private("GET /api/workspaces/{id}/tasks", h.Tasks.ListTasks)
	private("POST /api/workspaces/{id}/tasks", h.Tasks.CreateTask)
	private("PATCH /api/workspaces/{id}/tasks/{taskId}", h.Tasks.UpdateTask)
	private("DELETE /api/workspaces/{id}/tasks/{taskId}", h.Tasks.DeleteTask)
	private("GET /api/workspaces/{id}/tasks/{taskId}/comments", h.Tasks.ListComments)
	private("POST /api/workspaces/{id}/tasks/{taskId}/comments", h.Tasks.AddComment)
	private("DELETE /api/workspaces/{id}/tasks/{taskId}/comments/{commentId}", h.Tasks.DeleteComment)

	// Interrogator routes
	private("POST /api/interrogator/summarize", h.Interrogator.Summarize)
	private("POST /api/interrogator/chat", h.Interrogator.Chat)
	private("POST /api/interrogator/generate-final", h.Interrogator.GenerateFinal)
	private("POST /api/interrogator/save-final", h.Interrogator.SaveFinal)
	private("POST /api/interrogator/upload-text", h.Interrogator.UploadText)
	private("POST /api/interrogator/transcribe", h.Interrogator.Transcribe)
	private("GET /api/interrogator/{id}", h.Interrogator.GetInterrogation)

	return mux
}
