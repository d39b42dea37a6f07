package models

import "time"

// TreeNode represents the root of a workspace tree
type TreeNode struct {
	Folders []*FolderTreeNode `json:"folders"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ParentID  *string           `json:"parentId"`
	CreatedAt time.Time         `json:"createdAt"`
	Folders   []*FolderTreeNode `json:"folders"`
	Files     []FileTreeNode    `json:"files"`
}

// FileTreeNode represents a file in the tree (metadata only)
type FileTreeNode struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Size      *int64    `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
