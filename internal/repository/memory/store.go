// Package memory is an in-process implementation of the repository interfaces.
//
// Deletes follow the same ON DELETE CASCADE / SET NULL rules as the Postgres
// schema so services behave identically against either backend. It backs the
// service tests and the server's no-database dev mode.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
)

// Store holds every table. All repositories created from one Store share it.
type Store struct {
	mu             sync.RWMutex
	users          map[string]*models.User
	workspaces     map[string]*models.Workspace
	members        map[string]*models.WorkspaceMember
	folders        map[string]*models.Folder
	files          map[string]*models.File
	tasks          map[string]*models.Task
	comments       map[string]*models.TaskComment
	interrogations map[string]*models.Interrogation

	// insertion order, used to break created_at ties
	seq   int64
	order map[string]int64
}

func NewStore() *Store {
	return &Store{
		users:          make(map[string]*models.User),
		workspaces:     make(map[string]*models.Workspace),
		members:        make(map[string]*models.WorkspaceMember),
		folders:        make(map[string]*models.Folder),
		files:          make(map[string]*models.File),
		tasks:          make(map[string]*models.Task),
		comments:       make(map[string]*models.TaskComment),
		interrogations: make(map[string]*models.Interrogation),
		order:          make(map[string]int64),
	}
}

// Repositories bundles one repository of each kind over a shared store
type Repositories struct {
	Users          repositories.UserRepository
	Workspaces     repositories.WorkspaceRepository
	Members        repositories.MemberRepository
	Folders        repositories.FolderRepository
	Files          repositories.FileRepository
	Tasks          repositories.TaskRepository
	Comments       repositories.CommentRepository
	Interrogations repositories.InterrogationRepository
	Tx             repositories.TransactionManager
}

// NewRepositories creates a fresh store and all repositories over it
func NewRepositories() *Repositories {
	s := NewStore()
	return &Repositories{
		Users:          &UserRepository{s: s},
		Workspaces:     &WorkspaceRepository{s: s},
		Members:        &MemberRepository{s: s},
		Folders:        &FolderRepository{s: s},
		Files:          &FileRepository{s: s},
		Tasks:          &TaskRepository{s: s},
		Comments:       &CommentRepository{s: s},
		Interrogations: &InterrogationRepository{s: s},
		Tx:             &TransactionManager{s: s},
	}
}

// TransactionManager snapshots the store before fn and restores it when fn fails.
// Transactions are serialized; a write made outside one while it runs is lost on rollback.
type TransactionManager struct {
	s  *Store
	mu sync.Mutex
}

func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if repositories.InTx(ctx) {
		return fn(ctx)
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.s.mu.RLock()
	snap := tm.s.snapshotLocked()
	tm.s.mu.RUnlock()

	txCtx, runHooks := repositories.WithCommitHooks(ctx)
	if err := fn(txCtx); err != nil {
		tm.s.mu.Lock()
		tm.s.restoreLocked(snap)
		tm.s.mu.Unlock()
		return err
	}

	runHooks(ctx)
	return nil
}

type snapshot struct {
	users          map[string]*models.User
	workspaces     map[string]*models.Workspace
	members        map[string]*models.WorkspaceMember
	folders        map[string]*models.Folder
	files          map[string]*models.File
	tasks          map[string]*models.Task
	comments       map[string]*models.TaskComment
	interrogations map[string]*models.Interrogation
	seq            int64
	order          map[string]int64
}

// cloneTable copies each row; repositories update some rows in place.
func cloneTable[T any](m map[string]*T) map[string]*T {
	out := make(map[string]*T, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func (s *Store) snapshotLocked() *snapshot {
	interrogations := make(map[string]*models.Interrogation, len(s.interrogations))
	for k, it := range s.interrogations {
		interrogations[k] = cloneInterrogation(it)
	}
	order := make(map[string]int64, len(s.order))
	for k, v := range s.order {
		order[k] = v
	}
	return &snapshot{
		users:          cloneTable(s.users),
		workspaces:     cloneTable(s.workspaces),
		members:        cloneTable(s.members),
		folders:        cloneTable(s.folders),
		files:          cloneTable(s.files),
		tasks:          cloneTable(s.tasks),
		comments:       cloneTable(s.comments),
		interrogations: interrogations,
		seq:            s.seq,
		order:          order,
	}
}

func (s *Store) restoreLocked(snap *snapshot) {
	s.users = snap.users
	s.workspaces = snap.workspaces
	s.members = snap.members
	s.folders = snap.folders
	s.files = snap.files
	s.tasks = snap.tasks
	s.comments = snap.comments
	s.interrogations = snap.interrogations
	s.seq = snap.seq
	s.order = snap.order
}

// newIDLocked allocates an id and records its insertion order.
func (s *Store) newIDLocked() string {
	id := uuid.NewString()
	s.seq++
	s.order[id] = s.seq
	return id
}

// before orders two ids by insertion.
func (s *Store) before(a, b string) bool {
	return s.order[a] < s.order[b]
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

// The delete helpers below assume s.mu is held for writing.

func (s *Store) deleteWorkspaceLocked(id string) {
	delete(s.workspaces, id)
	for k, m := range s.members {
		if m.WorkspaceID == id {
			delete(s.members, k)
		}
	}
	for k, f := range s.folders {
		if f.WorkspaceID == id {
			delete(s.folders, k)
		}
	}
	for k, f := range s.files {
		if f.WorkspaceID == id {
			delete(s.files, k)
		}
	}
	for k, t := range s.tasks {
		if t.WorkspaceID == id {
			s.deleteTaskLocked(k)
		}
	}
	for k, it := range s.interrogations {
		if it.WorkspaceID == id {
			delete(s.interrogations, k)
		}
	}
}

func (s *Store) deleteFolderLocked(id string) {
	if _, ok := s.folders[id]; !ok {
		return
	}
	delete(s.folders, id)
	for k, f := range s.files {
		if f.FolderID == id {
			s.deleteFileLocked(k)
		}
	}
	for k, child := range s.folders {
		if child.ParentID != nil && *child.ParentID == id {
			s.deleteFolderLocked(k)
		}
	}
}

func (s *Store) deleteFileLocked(id string) {
	delete(s.files, id)
	for _, c := range s.comments {
		if c.FileID != nil && *c.FileID == id {
			c.FileID = nil
		}
	}
}

func (s *Store) deleteTaskLocked(id string) {
	delete(s.tasks, id)
	for k, c := range s.comments {
		if c.TaskID == id {
			delete(s.comments, k)
		}
	}
}
