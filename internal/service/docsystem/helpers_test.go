package docsystem

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"thecrew/internal/domain/models"
	"thecrew/internal/domain/services"
	"thecrew/internal/repository/memory"
	serviceauth "thecrew/internal/service/auth"
	"thecrew/internal/storage"
)

type fixture struct {
	repos   *memory.Repositories
	storage *storage.MemoryStorage
	folders services.FolderService
	files   services.FileService
	tree    services.TreeService
	uploads services.UploadService

	workspace *models.Workspace
	users     map[models.Role]*models.User
	outsider  *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repos := memory.NewRepositories()
	store := storage.NewMemoryStorage("https://media.test")
	authz := serviceauth.NewRoleAuthorizer(repos.Members)
	validator := NewResourceValidator(repos.Folders)

	f := &fixture{
		repos:   repos,
		storage: store,
		folders: NewFolderService(repos.Folders, repos.Files, repos.Tx, validator, authz, store, logger),
		files:   NewFileService(repos.Files, validator, authz, store, logger),
		tree:    NewTreeService(repos.Folders, repos.Files, authz, logger),
		uploads: NewUploadService(store, 1<<20, 15*time.Minute, logger),
		users:   make(map[models.Role]*models.User),
	}

	for _, role := range []models.Role{models.RoleAdmin, models.RoleMember, models.RoleViewer} {
		u := &models.User{Email: string(role) + "@example.com", Name: string(role)}
		require.NoError(t, repos.Users.Create(ctx, u))
		f.users[role] = u
	}
	f.outsider = &models.User{Email: "outsider@example.com"}
	require.NoError(t, repos.Users.Create(ctx, f.outsider))

	f.workspace = &models.Workspace{Name: "Launch", CreatedBy: f.users[models.RoleAdmin].ID}
	require.NoError(t, repos.Workspaces.Create(ctx, f.workspace))
	for role, u := range f.users {
		require.NoError(t, repos.Members.Add(ctx, &models.WorkspaceMember{WorkspaceID: f.workspace.ID, UserID: u.ID, Role: role}))
	}
	return f
}

func (f *fixture) id(role models.Role) string {
	return f.users[role].ID
}

func (f *fixture) mkdir(t *testing.T, name string, parentID *string) *models.Folder {
	t.Helper()
	folder, err := f.folders.CreateFolder(context.Background(), f.id(models.RoleMember), &services.CreateFolderRequest{
		WorkspaceID: f.workspace.ID,
		Name:        name,
		ParentID:    parentID,
	})
	require.NoError(t, err)
	return folder
}

func (f *fixture) record(t *testing.T, role models.Role, folderID, name string) *models.File {
	t.Helper()
	userID := f.id(role)
	file, err := f.files.RecordFile(context.Background(), userID, &services.RecordFileRequest{
		WorkspaceID: f.workspace.ID,
		FolderID:    folderID,
		Name:        name,
		Type:        "video/mp4",
		ObjectPath:  ObjectKey(userID, "fixed-id", name),
	})
	require.NoError(t, err)
	return file
}
