package services

import (
	"context"
	"time"

	"thecrew/internal/domain/models"
)

// FileService handles file metadata
type FileService interface {
	// RecordFile persists metadata after the client finished its direct upload
	RecordFile(ctx context.Context, userID string, req *RecordFileRequest) (*models.File, error)

	GetFile(ctx context.Context, userID, workspaceID, fileID string) (*models.File, error)
	ListFiles(ctx context.Context, userID, workspaceID, folderID string) ([]models.File, error)
	ListWorkspaceFiles(ctx context.Context, userID, workspaceID string) ([]models.File, error)

	// DeleteFile removes metadata then the stored object, best-effort. Deleting a missing file succeeds.
	DeleteFile(ctx context.Context, userID, workspaceID, fileID string) error
}

// UploadService issues presigned direct-to-storage upload URLs
type UploadService interface {
	RequestUploadURL(ctx context.Context, userID string, req *UploadURLRequest) (*models.UploadTicket, error)
}

// ObjectStorage is the object-store adapter
type ObjectStorage interface {
	// PresignPut returns a URL accepting exactly one PUT of the given type and length,
	// plus the headers the client must send with it
	PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, map[string]string, error)

	// ReadURL returns a URL the client can GET the object from
	ReadURL(ctx context.Context, key string) (string, error)

	Delete(ctx context.Context, key string) error
}

type RecordFileRequest struct {
	WorkspaceID string `json:"-"`
	FolderID    string `json:"folderId"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	ObjectPath  string `json:"objectPath"`
	Size        *int64 `json:"size,omitempty"`
}

type UploadURLRequest struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}
