package models

import "time"

// File is metadata for an object stored in object storage.
type File struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	FolderID    string    `json:"folderId"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	ObjectPath  string    `json:"objectPath"`
	Size        *int64    `json:"size"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	URL         string    `json:"url,omitempty"` // Read URL, computed per request
}

// UploadTicket is a presigned direct-to-storage upload grant.
type UploadTicket struct {
	UploadURL  string            `json:"uploadURL"`
	ObjectPath string            `json:"objectPath"`
	ExpiresAt  time.Time         `json:"expiresAt"`
	Headers    map[string]string `json:"headers"`
}
