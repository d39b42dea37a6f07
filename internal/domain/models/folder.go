package models

import "time"

type Folder struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	ParentID    *string   `json:"parentId"` // NULL = root level
	Name        string    `json:"name"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FolderWithPath is a folder plus its root-to-leaf breadcrumb.
type FolderWithPath struct {
	Folder
	Breadcrumb []Folder `json:"breadcrumb"`
}
