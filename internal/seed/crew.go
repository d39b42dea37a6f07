// Package seed fills an environment with a demo crew so the app has something to show.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/services"
)

// DemoPassword is shared by every seeded account
const DemoPassword = "crew-demo-pass"

// DemoWorkspace is the name of the seeded workspace; seeding skips it when present
const DemoWorkspace = "Spring Campaign"

type demoUser struct {
	email string
	name  string
	role  models.Role
}

var demoUsers = []demoUser{
	{"producer@thecrew.dev", "Priya Producer", models.RoleAdmin},
	{"editor@thecrew.dev", "Eddie Editor", models.RoleMember},
	{"client@thecrew.dev", "Carla Client", models.RoleViewer},
}

// demoFolders lists folders parent-first as slash paths
var demoFolders = []string{"Raw", "Raw/Day 1", "Raw/Day 2", "Selects", "Deliverables"}

var demoTasks = []struct {
	title  string
	status string
}{
	{"Book studio for two days", "todo"},
	{"Confirm talent and wardrobe", "in_progress"},
	{"Pull selects from day 1", "todo"},
	{"Color grade hero spot", "review"},
}

// Services are the service-layer entry points seeding goes through
type Services struct {
	Accounts   services.AccountService
	Workspaces services.WorkspaceService
	Members    services.MemberService
	Folders    services.FolderService
	Tasks      services.TaskService
}

// Result reports what a seeding run created or found
type Result struct {
	Workspace *models.Workspace
	Users     []*models.User
	Created   bool // false when the demo workspace already existed
}

// Seeder creates the demo crew through the service layer so every rule applies
type Seeder struct {
	svc    Services
	logger *slog.Logger
}

func New(svc Services, logger *slog.Logger) *Seeder {
	return &Seeder{svc: svc, logger: logger}
}

// Run is idempotent: existing accounts are reused and an existing demo workspace is left alone
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	result := &Result{}
	for _, du := range demoUsers {
		user, err := s.ensureUser(ctx, du)
		if err != nil {
			return nil, err
		}
		result.Users = append(result.Users, user)
	}
	owner := result.Users[0]

	existing, err := s.svc.Workspaces.ListWorkspaces(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Name == DemoWorkspace {
			s.logger.Info("demo workspace already seeded", "workspace_id", existing[i].ID)
			result.Workspace = &existing[i]
			return result, nil
		}
	}

	description := "Demo production seeded for local development"
	ws, err := s.svc.Workspaces.CreateWorkspace(ctx, owner.ID, &services.CreateWorkspaceRequest{
		Name:        DemoWorkspace,
		Description: &description,
	})
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	result.Workspace = ws
	result.Created = true

	for i, du := range demoUsers {
		if du.role == models.RoleAdmin {
			continue
		}
		if _, err := s.svc.Members.AddMember(ctx, owner.ID, ws.ID, &services.AddMemberRequest{
			Email: du.email,
			Role:  string(du.role),
		}); err != nil {
			return nil, fmt.Errorf("add %s: %w", result.Users[i].Email, err)
		}
	}

	if err := s.seedFolders(ctx, owner.ID, ws.ID); err != nil {
		return nil, err
	}

	for _, t := range demoTasks {
		if _, err := s.svc.Tasks.CreateTask(ctx, owner.ID, ws.ID, &services.CreateTaskRequest{
			Title:  t.title,
			Status: t.status,
		}); err != nil {
			return nil, fmt.Errorf("create task %q: %w", t.title, err)
		}
	}

	s.logger.Info("demo crew seeded",
		"workspace_id", ws.ID,
		"users", len(result.Users),
		"folders", len(demoFolders),
		"tasks", len(demoTasks),
	)
	return result, nil
}

func (s *Seeder) ensureUser(ctx context.Context, du demoUser) (*models.User, error) {
	user, err := s.svc.Accounts.Register(ctx, &services.RegisterRequest{
		Email:    du.email,
		Password: DemoPassword,
		Name:     du.name,
	})
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return nil, fmt.Errorf("register %s: %w", du.email, err)
	}

	// Already registered on an earlier run
	user, err = s.svc.Accounts.Login(ctx, &services.LoginRequest{Email: du.email, Password: DemoPassword})
	if err != nil {
		return nil, fmt.Errorf("%s exists with a different password: %w", du.email, err)
	}
	return user, nil
}

func (s *Seeder) seedFolders(ctx context.Context, userID, workspaceID string) error {
	ids := make(map[string]string, len(demoFolders))
	for _, path := range demoFolders {
		parent, name := splitPath(path)
		req := &services.CreateFolderRequest{WorkspaceID: workspaceID, Name: name}
		if parent != "" {
			parentID := ids[parent]
			req.ParentID = &parentID
		}
		folder, err := s.svc.Folders.CreateFolder(ctx, userID, req)
		if err != nil {
			return fmt.Errorf("create folder %s: %w", path, err)
		}
		ids[path] = folder.ID
	}
	return nil
}

func splitPath(path string) (string, string) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i], path[i+1:]
		}
	}
	return "", path
}
