package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"thecrew/internal/config"
	"thecrew/internal/domain/repositories"
	"thecrew/internal/handler"
	"thecrew/internal/repository/memory"
	"thecrew/internal/repository/postgres"
)

// backend is the set of repositories the services are built on
type backend struct {
	users          repositories.UserRepository
	workspaces     repositories.WorkspaceRepository
	members        repositories.MemberRepository
	folders        repositories.FolderRepository
	files          repositories.FileRepository
	tasks          repositories.TaskRepository
	comments       repositories.CommentRepository
	interrogations repositories.InterrogationRepository
	tx             repositories.TransactionManager
	db             handler.Pinger // nil for the in-memory store
	close          func()
}

// openBackend connects to Postgres, or falls back to the in-memory store outside prod
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	if cfg.DatabaseURL == "" {
		if cfg.Environment == "prod" {
			return nil, errors.New("DATABASE_URL is required in prod")
		}
		logger.Warn("DATABASE_URL not set, using in-memory store (data is lost on restart)")
		repos := memory.NewRepositories()
		return &backend{
			users:          repos.Users,
			workspaces:     repos.Workspaces,
			members:        repos.Members,
			folders:        repos.Folders,
			files:          repos.Files,
			tasks:          repos.Tasks,
			comments:       repos.Comments,
			interrogations: repos.Interrogations,
			tx:             repos.Tx,
			close:          func() {},
		}, nil
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}

	if cfg.AutoMigrate {
		applied, err := postgres.NewMigrator(repoConfig).Up(ctx)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("migrations applied", "versions", applied)
	}

	return &backend{
		users:          postgres.NewUserRepository(repoConfig),
		workspaces:     postgres.NewWorkspaceRepository(repoConfig),
		members:        postgres.NewMemberRepository(repoConfig),
		folders:        postgres.NewFolderRepository(repoConfig),
		files:          postgres.NewFileRepository(repoConfig),
		tasks:          postgres.NewTaskRepository(repoConfig),
		comments:       postgres.NewCommentRepository(repoConfig),
		interrogations: postgres.NewInterrogationRepository(repoConfig),
		tx:             postgres.NewTransactionManager(repoConfig),
		db:             pool,
		close:          pool.Close,
	}, nil
}
