package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
)

func seedWorkspace(t *testing.T, repos *Repositories) (*models.User, *models.Workspace) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Email: "bob@example.com", Name: "Bob", PasswordHash: "x"}
	require.NoError(t, repos.Users.Create(ctx, user))

	ws := &models.Workspace{Name: "Launch", CreatedBy: user.ID}
	require.NoError(t, repos.Workspaces.Create(ctx, ws))
	require.NoError(t, repos.Members.Add(ctx, &models.WorkspaceMember{WorkspaceID: ws.ID, UserID: user.ID, Role: models.RoleAdmin}))
	return user, ws
}

func TestFolderDeleteCascades(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	user, ws := seedWorkspace(t, repos)

	root := &models.Folder{WorkspaceID: ws.ID, Name: "Raw", CreatedBy: user.ID}
	require.NoError(t, repos.Folders.Create(ctx, root))
	child := &models.Folder{WorkspaceID: ws.ID, ParentID: &root.ID, Name: "Day 1", CreatedBy: user.ID}
	require.NoError(t, repos.Folders.Create(ctx, child))

	file := &models.File{WorkspaceID: ws.ID, FolderID: child.ID, Name: "clip.mp4", Type: "video/mp4", ObjectPath: "uploads/u/1/clip.mp4", CreatedBy: user.ID}
	require.NoError(t, repos.Files.Create(ctx, file))

	require.NoError(t, repos.Folders.Delete(ctx, root.ID, ws.ID))

	_, err := repos.Folders.GetByID(ctx, child.ID, ws.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = repos.Files.GetByID(ctx, file.ID, ws.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// second delete is a no-op
	assert.NoError(t, repos.Folders.Delete(ctx, root.ID, ws.ID))
}

func TestFolderCreateRejectsForeignParent(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	user, ws := seedWorkspace(t, repos)

	other := &models.Workspace{Name: "Other", CreatedBy: user.ID}
	require.NoError(t, repos.Workspaces.Create(ctx, other))
	foreign := &models.Folder{WorkspaceID: other.ID, Name: "Elsewhere", CreatedBy: user.ID}
	require.NoError(t, repos.Folders.Create(ctx, foreign))

	err := repos.Folders.Create(ctx, &models.Folder{WorkspaceID: ws.ID, ParentID: &foreign.ID, Name: "x", CreatedBy: user.ID})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.KindInvalidParent, verr.Kind())
}

func TestFileDeleteByFolderReturnsPaths(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	user, ws := seedWorkspace(t, repos)

	folder := &models.Folder{WorkspaceID: ws.ID, Name: "Raw", CreatedBy: user.ID}
	require.NoError(t, repos.Folders.Create(ctx, folder))
	for _, p := range []string{"uploads/a", "uploads/b"} {
		require.NoError(t, repos.Files.Create(ctx, &models.File{WorkspaceID: ws.ID, FolderID: folder.ID, Name: p, Type: "text/plain", ObjectPath: p, CreatedBy: user.ID}))
	}

	paths, err := repos.Files.DeleteByFolder(ctx, folder.ID, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads/a", "uploads/b"}, paths)

	files, err := repos.Files.ListByFolder(ctx, folder.ID, ws.ID)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestTaskUpdateIfVersion(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	user, ws := seedWorkspace(t, repos)

	task := &models.Task{WorkspaceID: ws.ID, Title: "Cut teaser", Status: models.TaskTodo, CreatedBy: user.ID}
	require.NoError(t, repos.Tasks.Create(ctx, task))
	require.Equal(t, 1, task.Version)

	task.Title = "Cut teaser v2"
	require.NoError(t, repos.Tasks.UpdateIfVersion(ctx, task, 1))
	assert.Equal(t, 2, task.Version)

	stale := *task
	stale.Title = "stale write"
	err := repos.Tasks.UpdateIfVersion(ctx, &stale, 1)
	var cerr *domain.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, domain.KindVersionConflict, cerr.Kind())

	got, err := repos.Tasks.GetByID(ctx, task.ID, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cut teaser v2", got.Title)
}

func TestTaskDeleteCascadesComments(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	user, ws := seedWorkspace(t, repos)

	task := &models.Task{WorkspaceID: ws.ID, Title: "Review", Status: models.TaskReview, CreatedBy: user.ID}
	require.NoError(t, repos.Tasks.Create(ctx, task))
	require.NoError(t, repos.Comments.Create(ctx, &models.TaskComment{TaskID: task.ID, WorkspaceID: ws.ID, Body: "looks good", CreatedBy: user.ID}))

	require.NoError(t, repos.Tasks.Delete(ctx, task.ID, ws.ID))
	comments, err := repos.Comments.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestWorkspaceDeleteRemovesEverything(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	user, ws := seedWorkspace(t, repos)

	require.NoError(t, repos.Folders.Create(ctx, &models.Folder{WorkspaceID: ws.ID, Name: "Raw", CreatedBy: user.ID}))
	require.NoError(t, repos.Workspaces.Delete(ctx, ws.ID))

	list, err := repos.Workspaces.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	folders, err := repos.Folders.ListByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	assert.Empty(t, folders)

	_, err = repos.Members.Get(ctx, ws.ID, user.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestInterrogationCopiesAreIndependent(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	user, ws := seedWorkspace(t, repos)

	it := &models.Interrogation{WorkspaceID: ws.ID, CreatedBy: user.ID, Status: models.StatusUpload, Answers: map[string]string{}}
	require.NoError(t, repos.Interrogations.Create(ctx, it))

	got, err := repos.Interrogations.GetByID(ctx, it.ID)
	require.NoError(t, err)
	got.Answers["goal"] = "mutated"

	again, err := repos.Interrogations.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Answers)
}

func TestExecTxRestoresStoreOnError(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	user, ws := seedWorkspace(t, repos)

	keep := &models.Folder{WorkspaceID: ws.ID, Name: "Raw", CreatedBy: user.ID}
	require.NoError(t, repos.Folders.Create(ctx, keep))

	boom := errors.New("boom")
	err := repos.Tx.ExecTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, repos.Folders.Create(txCtx, &models.Folder{WorkspaceID: ws.ID, Name: "Selects", CreatedBy: user.ID}))
		require.NoError(t, repos.Folders.Update(txCtx, &models.Folder{ID: keep.ID, WorkspaceID: ws.ID, Name: "Renamed"}))
		require.NoError(t, repos.Members.DeleteByWorkspace(txCtx, ws.ID))
		return boom
	})
	require.ErrorIs(t, err, boom)

	folders, err := repos.Folders.ListByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Raw", folders[0].Name)

	member, err := repos.Members.Get(ctx, ws.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, member.Role)
}

func TestExecTxRunsCommitHooksOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	committed := 0
	require.NoError(t, repos.Tx.ExecTx(ctx, func(txCtx context.Context) error {
		repositories.AfterCommit(txCtx, func(context.Context) { committed++ })
		// nested calls join the outer transaction
		return repos.Tx.ExecTx(txCtx, func(inner context.Context) error {
			repositories.AfterCommit(inner, func(context.Context) { committed++ })
			assert.Zero(t, committed)
			return nil
		})
	}))
	assert.Equal(t, 2, committed)

	_ = repos.Tx.ExecTx(ctx, func(txCtx context.Context) error {
		repositories.AfterCommit(txCtx, func(context.Context) { committed++ })
		return errors.New("rolled back")
	})
	assert.Equal(t, 2, committed)
}
