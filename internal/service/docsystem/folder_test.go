package docsystem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/services"
)

func TestCreateFolderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   string
	}{
		{"blank", "   "},
		{"slash", "a/b"},
		{"too long", string(make([]byte, 256))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.folders.CreateFolder(ctx, f.id(models.RoleMember), &services.CreateFolderRequest{WorkspaceID: f.workspace.ID, Name: tt.in})
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCreateFolderRejectsParentFromOtherWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.users[models.RoleAdmin]

	other := &models.Workspace{Name: "Other", CreatedBy: admin.ID}
	require.NoError(t, f.repos.Workspaces.Create(ctx, other))
	require.NoError(t, f.repos.Members.Add(ctx, &models.WorkspaceMember{WorkspaceID: other.ID, UserID: admin.ID, Role: models.RoleAdmin}))
	foreign, err := f.folders.CreateFolder(ctx, admin.ID, &services.CreateFolderRequest{WorkspaceID: other.ID, Name: "Elsewhere"})
	require.NoError(t, err)

	_, err = f.folders.CreateFolder(ctx, admin.ID, &services.CreateFolderRequest{
		WorkspaceID: f.workspace.ID,
		Name:        "Child",
		ParentID:    &foreign.ID,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.KindInvalidParent, verr.Kind())

	folders, err := f.folders.ListFolders(ctx, admin.ID, f.workspace.ID)
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestViewerCannotCreateFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.folders.CreateFolder(ctx, f.id(models.RoleViewer), &services.CreateFolderRequest{WorkspaceID: f.workspace.ID, Name: "Raw"})
	var ferr *domain.ForbiddenError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, domain.KindPermissionDenied, ferr.Kind())

	folders, err := f.folders.ListFolders(ctx, f.id(models.RoleViewer), f.workspace.ID)
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestOutsiderIsDeniedEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	raw := f.mkdir(t, "Raw", nil)
	outsider := f.outsider.ID

	_, err := f.folders.ListFolders(ctx, outsider, f.workspace.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.folders.GetFolder(ctx, outsider, f.workspace.ID, raw.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.folders.CreateFolder(ctx, outsider, &services.CreateFolderRequest{WorkspaceID: f.workspace.ID, Name: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.folders.DeleteFolder(ctx, outsider, f.workspace.ID, raw.ID), domain.ErrForbidden)
	_, err = f.tree.GetWorkspaceTree(ctx, outsider, f.workspace.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.files.ListWorkspaceFiles(ctx, outsider, f.workspace.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGetFolderBreadcrumb(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mkdir(t, "A", nil)
	b := f.mkdir(t, "B", &a.ID)
	c := f.mkdir(t, "C", &b.ID)

	got, err := f.folders.GetFolder(ctx, f.id(models.RoleViewer), f.workspace.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Breadcrumb, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{got.Breadcrumb[0].Name, got.Breadcrumb[1].Name, got.Breadcrumb[2].Name})
}

func TestRenameFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	raw := f.mkdir(t, "Raw", nil)

	renamed, err := f.folders.RenameFolder(ctx, f.id(models.RoleMember), f.workspace.ID, raw.ID, &services.RenameFolderRequest{Name: " Footage "})
	require.NoError(t, err)
	assert.Equal(t, "Footage", renamed.Name)

	_, err = f.folders.RenameFolder(ctx, f.id(models.RoleViewer), f.workspace.ID, raw.ID, &services.RenameFolderRequest{Name: "Nope"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// bob records clip.mp4 in Raw, deletes Raw, and the file is gone with its object
func TestDeleteFolderRemovesFilesAndObjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	raw := f.mkdir(t, "Raw", nil)
	day1 := f.mkdir(t, "Day 1", &raw.ID)
	clip := f.record(t, models.RoleMember, raw.ID, "clip.mp4")
	nested := f.record(t, models.RoleMember, day1.ID, "b-roll.mov")

	require.NoError(t, f.folders.DeleteFolder(ctx, f.id(models.RoleMember), f.workspace.ID, raw.ID))

	_, err := f.files.GetFile(ctx, f.id(models.RoleMember), f.workspace.ID, clip.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.folders.GetFolder(ctx, f.id(models.RoleMember), f.workspace.ID, day1.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ElementsMatch(t, []string{clip.ObjectPath, nested.ObjectPath}, f.storage.Deleted())

	// double delete is a no-op
	assert.NoError(t, f.folders.DeleteFolder(ctx, f.id(models.RoleMember), f.workspace.ID, raw.ID))
}

func TestDeleteFolderSurvivesStorageFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	raw := f.mkdir(t, "Raw", nil)
	clip := f.record(t, models.RoleMember, raw.ID, "clip.mp4")
	f.storage.FailDelete(clip.ObjectPath, assert.AnError)

	require.NoError(t, f.folders.DeleteFolder(ctx, f.id(models.RoleMember), f.workspace.ID, raw.ID))
	_, err := f.files.GetFile(ctx, f.id(models.RoleMember), f.workspace.ID, clip.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
