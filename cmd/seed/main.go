package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"thecrew/internal/config"
	"thecrew/internal/repository/postgres"
	"thecrew/internal/seed"
	"thecrew/internal/service/account"
	serviceauth "thecrew/internal/service/auth"
	"thecrew/internal/service/docsystem"
	"thecrew/internal/service/task"
	"thecrew/internal/service/workspace"
	"thecrew/internal/storage"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	if err := newRootCmd(config.Load()).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "seed",
		Short:        "Manage the thecrew database schema and demo data",
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCmd(cfg),
		newDropCmd(cfg),
		newSeedCmd(cfg),
	)
	return root
}

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), cfg, func(ctx context.Context, repoConfig *postgres.RepositoryConfig) error {
				applied, err := postgres.NewMigrator(repoConfig).Up(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s) (prefix: %q)\n", len(applied), cfg.TablePrefix)
				return nil
			})
		},
	}
}

func newDropCmd(cfg *config.Config) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every table of the current environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			// SAFETY: Prevent destructive operations in production
			if cfg.Environment == "prod" {
				return fmt.Errorf("refusing to drop tables in prod")
			}
			if !confirm {
				return fmt.Errorf("pass --yes to drop all %q tables", cfg.TablePrefix)
			}
			return withDatabase(cmd.Context(), cfg, func(ctx context.Context, repoConfig *postgres.RepositoryConfig) error {
				if err := postgres.NewMigrator(repoConfig).DropAll(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "all tables dropped (prefix: %q)\n", cfg.TablePrefix)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm dropping all tables")
	return cmd
}

func newSeedCmd(cfg *config.Config) *cobra.Command {
	var fresh bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate, then create the demo crew, workspace, folders and tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Environment == "prod" {
				return fmt.Errorf("refusing to seed demo data in prod")
			}
			return withDatabase(cmd.Context(), cfg, func(ctx context.Context, repoConfig *postgres.RepositoryConfig) error {
				migrator := postgres.NewMigrator(repoConfig)
				if fresh {
					if err := migrator.DropAll(ctx); err != nil {
						return err
					}
				}
				if _, err := migrator.Up(ctx); err != nil {
					return err
				}

				seeder, err := newSeeder(repoConfig)
				if err != nil {
					return err
				}
				result, err := seeder.Run(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if result.Created {
					fmt.Fprintf(out, "seeded workspace %q (%s)\n", result.Workspace.Name, result.Workspace.ID)
				} else {
					fmt.Fprintf(out, "workspace %q already present (%s)\n", result.Workspace.Name, result.Workspace.ID)
				}
				for _, u := range result.Users {
					fmt.Fprintf(out, "  %s / %s\n", u.Email, seed.DemoPassword)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "drop all tables before seeding")
	return cmd
}

func withDatabase(ctx context.Context, cfg *config.Config, fn func(context.Context, *postgres.RepositoryConfig) error) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: config.NewLogger(cfg.Environment, os.Stderr),
	})
}

// newSeeder builds the services seeding goes through. Storage is never touched while seeding.
func newSeeder(repoConfig *postgres.RepositoryConfig) (*seed.Seeder, error) {
	logger := repoConfig.Logger
	users := postgres.NewUserRepository(repoConfig)
	members := postgres.NewMemberRepository(repoConfig)
	folders := postgres.NewFolderRepository(repoConfig)
	files := postgres.NewFileRepository(repoConfig)
	tasks := postgres.NewTaskRepository(repoConfig)
	tx := postgres.NewTransactionManager(repoConfig)
	authz := serviceauth.NewRoleAuthorizer(members)
	store := storage.NewMemoryStorage("")

	accounts, err := account.NewAccountService(users, bcrypt.DefaultCost, logger)
	if err != nil {
		return nil, err
	}

	return seed.New(seed.Services{
		Accounts: accounts,
		Workspaces: workspace.NewWorkspaceService(workspace.Repositories{
			Workspaces:     postgres.NewWorkspaceRepository(repoConfig),
			Members:        members,
			Users:          users,
			Folders:        folders,
			Files:          files,
			Tasks:          tasks,
			Interrogations: postgres.NewInterrogationRepository(repoConfig),
		}, tx, authz, store, logger),
		Members: workspace.NewMemberService(members, users, tx, authz, logger),
		Folders: docsystem.NewFolderService(folders, files, tx, docsystem.NewResourceValidator(folders), authz, store, logger),
		Tasks:   task.NewTaskService(tasks, postgres.NewCommentRepository(repoConfig), members, files, authz, logger),
	}, logger), nil
}
