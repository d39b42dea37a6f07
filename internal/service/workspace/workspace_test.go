package workspace

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/services"
	"thecrew/internal/repository/memory"
	serviceauth "thecrew/internal/service/auth"
	"thecrew/internal/storage"
)

type fixture struct {
	repos      *memory.Repositories
	storage    *storage.MemoryStorage
	workspaces services.WorkspaceService
	members    services.MemberService
	users      map[string]*models.User
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repos := memory.NewRepositories()
	store := storage.NewMemoryStorage("https://media.test")
	authz := serviceauth.NewRoleAuthorizer(repos.Members)

	f := &fixture{
		repos:   repos,
		storage: store,
		workspaces: NewWorkspaceService(Repositories{
			Workspaces:     repos.Workspaces,
			Members:        repos.Members,
			Users:          repos.Users,
			Folders:        repos.Folders,
			Files:          repos.Files,
			Tasks:          repos.Tasks,
			Interrogations: repos.Interrogations,
		}, repos.Tx, authz, store, logger),
		members: NewMemberService(repos.Members, repos.Users, repos.Tx, authz, logger),
		users:   make(map[string]*models.User),
	}
	for _, name := range names {
		u := &models.User{Email: name + "@example.com", Name: name}
		require.NoError(t, repos.Users.Create(context.Background(), u))
		f.users[name] = u
	}
	return f
}

func (f *fixture) create(t *testing.T, owner string) *models.Workspace {
	t.Helper()
	ws, err := f.workspaces.CreateWorkspace(context.Background(), f.users[owner].ID, &services.CreateWorkspaceRequest{Name: "Launch"})
	require.NoError(t, err)
	return ws
}

func (f *fixture) add(t *testing.T, ws *models.Workspace, by, who string, role models.Role) *models.WorkspaceMember {
	t.Helper()
	m, err := f.members.AddMember(context.Background(), f.users[by].ID, ws.ID, &services.AddMemberRequest{Email: who + "@example.com", Role: string(role)})
	require.NoError(t, err)
	return m
}

func TestCreateWorkspaceMakesCreatorAdmin(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	ws := f.create(t, "alice")
	assert.Equal(t, models.RoleAdmin, ws.Role)

	list, err := f.workspaces.ListWorkspaces(ctx, f.users["alice"].ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.RoleAdmin, list[0].Role)
}

func TestCreateWorkspaceValidation(t *testing.T) {
	f := newFixture(t, "alice")

	_, err := f.workspaces.CreateWorkspace(context.Background(), f.users["alice"].ID, &services.CreateWorkspaceRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateWorkspaceTriStateDescription(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	ws := f.create(t, "alice")
	f.add(t, ws, "alice", "bob", models.RoleMember)

	desc := "Spring campaign"
	updated, err := f.workspaces.UpdateWorkspace(ctx, f.users["alice"].ID, ws.ID, &services.UpdateWorkspaceRequest{Description: services.Set(desc)})
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, desc, *updated.Description)

	name := "Renamed"
	updated, err = f.workspaces.UpdateWorkspace(ctx, f.users["alice"].ID, ws.ID, &services.UpdateWorkspaceRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.NotNil(t, updated.Description, "absent field keeps the value")

	updated, err = f.workspaces.UpdateWorkspace(ctx, f.users["alice"].ID, ws.ID, &services.UpdateWorkspaceRequest{Description: services.Optional[string]{Present: true}})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)

	_, err = f.workspaces.UpdateWorkspace(ctx, f.users["bob"].ID, ws.ID, &services.UpdateWorkspaceRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeleteWorkspaceCascades(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	ws := f.create(t, "alice")
	f.add(t, ws, "alice", "bob", models.RoleMember)

	folder := &models.Folder{WorkspaceID: ws.ID, Name: "Raw", CreatedBy: f.users["bob"].ID}
	require.NoError(t, f.repos.Folders.Create(ctx, folder))
	file := &models.File{WorkspaceID: ws.ID, FolderID: folder.ID, Name: "clip.mp4", Type: "video/mp4", ObjectPath: "uploads/bob/1/clip.mp4", CreatedBy: f.users["bob"].ID}
	require.NoError(t, f.repos.Files.Create(ctx, file))
	require.NoError(t, f.repos.Tasks.Create(ctx, &models.Task{WorkspaceID: ws.ID, Title: "Edit", Status: models.TaskTodo, CreatedBy: f.users["bob"].ID}))

	// members cannot delete a workspace
	assert.ErrorIs(t, f.workspaces.DeleteWorkspace(ctx, f.users["bob"].ID, ws.ID), domain.ErrForbidden)

	require.NoError(t, f.workspaces.DeleteWorkspace(ctx, f.users["alice"].ID, ws.ID))

	members, err := f.repos.Members.List(ctx, ws.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
	folders, err := f.repos.Folders.ListByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	assert.Empty(t, folders)
	files, err := f.repos.Files.ListByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	assert.Empty(t, files)
	tasks, err := f.repos.Tasks.List(ctx, ws.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	assert.Equal(t, []string{"uploads/bob/1/clip.mp4"}, f.storage.Deleted())

	_, err = f.workspaces.GetWorkspace(ctx, f.users["alice"].ID, ws.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
