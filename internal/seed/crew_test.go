package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"thecrew/internal/domain/models"
	"thecrew/internal/repository/memory"
	"thecrew/internal/service/account"
	serviceauth "thecrew/internal/service/auth"
	"thecrew/internal/service/docsystem"
	"thecrew/internal/service/task"
	"thecrew/internal/service/workspace"
	"thecrew/internal/storage"
)

func newSeeder(t *testing.T) (*Seeder, *memory.Repositories) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repos := memory.NewRepositories()
	store := storage.NewMemoryStorage("https://media.test")
	authz := serviceauth.NewRoleAuthorizer(repos.Members)

	accounts, err := account.NewAccountService(repos.Users, bcrypt.MinCost, logger)
	require.NoError(t, err)

	return New(Services{
		Accounts: accounts,
		Workspaces: workspace.NewWorkspaceService(workspace.Repositories{
			Workspaces:     repos.Workspaces,
			Members:        repos.Members,
			Users:          repos.Users,
			Folders:        repos.Folders,
			Files:          repos.Files,
			Tasks:          repos.Tasks,
			Interrogations: repos.Interrogations,
		}, repos.Tx, authz, store, logger),
		Members: workspace.NewMemberService(repos.Members, repos.Users, repos.Tx, authz, logger),
		Folders: docsystem.NewFolderService(repos.Folders, repos.Files, repos.Tx,
			docsystem.NewResourceValidator(repos.Folders), authz, store, logger),
		Tasks: task.NewTaskService(repos.Tasks, repos.Comments, repos.Members, repos.Files, authz, logger),
	}, logger), repos
}

func TestRun_SeedsDemoCrew(t *testing.T) {
	ctx := context.Background()
	seeder, repos := newSeeder(t)

	result, err := seeder.Run(ctx)
	require.NoError(t, err)
	require.True(t, result.Created)
	require.Len(t, result.Users, len(demoUsers))

	members, err := repos.Members.List(ctx, result.Workspace.ID)
	require.NoError(t, err)
	roles := make(map[models.Role]int)
	for _, m := range members {
		roles[m.Role]++
	}
	assert.Equal(t, map[models.Role]int{models.RoleAdmin: 1, models.RoleMember: 1, models.RoleViewer: 1}, roles)

	folders, err := repos.Folders.ListByWorkspace(ctx, result.Workspace.ID)
	require.NoError(t, err)
	assert.Len(t, folders, len(demoFolders))

	tasks, err := repos.Tasks.List(ctx, result.Workspace.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, len(demoTasks))
}

func TestRun_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	seeder, repos := newSeeder(t)

	first, err := seeder.Run(ctx)
	require.NoError(t, err)
	second, err := seeder.Run(ctx)
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Workspace.ID, second.Workspace.ID)
	assert.Equal(t, first.Users[0].ID, second.Users[0].ID)

	list, err := repos.Workspaces.ListForUser(ctx, first.Users[0].ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSplitPath(t *testing.T) {
	parent, name := splitPath("Raw/Day 1")
	assert.Equal(t, "Raw", parent)
	assert.Equal(t, "Day 1", name)

	parent, name = splitPath("Selects")
	assert.Empty(t, parent)
	assert.Equal(t, "Selects", name)
}
