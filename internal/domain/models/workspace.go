package models

import "time"

// Workspace is the tenant container owning members, folders, files, tasks and interrogations.
type Workspace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Role        Role      `json:"role,omitempty"` // Caller's role, filled by the service
}

// WorkspaceMember binds a user to a workspace with exactly one role.
type WorkspaceMember struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	UserID      string    `json:"userId"`
	Role        Role      `json:"role"`
	AddedAt     time.Time `json:"addedAt"`

	// Joined from users for listing
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}
