package docsystem

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
)

// ResourceValidator checks that referenced folders live in the workspace being acted on
type ResourceValidator struct {
	folderRepo repositories.FolderRepository
}

func NewResourceValidator(folderRepo repositories.FolderRepository) *ResourceValidator {
	return &ResourceValidator{folderRepo: folderRepo}
}

// ValidateParent resolves a parent folder id. A folder from another workspace
// is indistinguishable from a missing one.
func (v *ResourceValidator) ValidateParent(ctx context.Context, parentID, workspaceID string) (*models.Folder, error) {
	return v.lookup(ctx, parentID, workspaceID, &domain.ValidationError{
		Message: "parent folder does not exist in this workspace",
		Reason:  domain.KindInvalidParent,
	})
}

// ValidateFolder resolves the folder a file is recorded into
func (v *ResourceValidator) ValidateFolder(ctx context.Context, folderID, workspaceID string) (*models.Folder, error) {
	return v.lookup(ctx, folderID, workspaceID, &domain.ValidationError{
		Message: "folder does not belong to this workspace",
		Reason:  domain.KindInvalidFolder,
	})
}

func (v *ResourceValidator) lookup(ctx context.Context, folderID, workspaceID string, notFound error) (*models.Folder, error) {
	folder, err := v.folderRepo.GetByID(ctx, folderID, workspaceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("validate folder: %w", err)
	}
	return folder, nil
}

// noSlash rejects names that would read as paths
var noSlash = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, `/\`) {
		return errors.New("cannot contain slashes")
	}
	return nil
})
