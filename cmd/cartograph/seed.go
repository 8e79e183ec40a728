package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cartograph/internal/config"
	models "cartograph/internal/domain/models/docsystem"
	fileRepo "cartograph/internal/repository/file"
	"cartograph/internal/repository/postgres"
	postgresDocsys "cartograph/internal/repository/postgres/docsystem"
)

type seedOptions struct {
	file       string
	projectID  string
	owner      string
	name       string
	schemaOnly bool
	timeout    time.Duration
}

func seedCmd() *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a node file into the explorer database, replacing the project's contents",
		Long: "Ensures the schema exists, upserts the project and rewrites its folders and documents\n" +
			"in one transaction. Uses DATABASE_URL and ENVIRONMENT (for the table prefix).",
		Example: "  cartograph seed --file data/3f0c...yaml\n" +
			"  cartograph seed -f demo.yaml --project 3f0c... --owner 00000000-0000-0000-0000-000000000001",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, opts.timeout)
			defer cancel()
			return runSeed(ctx, cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "Node file (.yaml, .yml or .json)")
	f.StringVar(&opts.projectID, "project", "", "Project UUID (default: the file name when it is a UUID)")
	f.StringVar(&opts.owner, "owner", "", "Owner user UUID (default: the file's owner, then DEV_USER_ID)")
	f.StringVar(&opts.name, "name", "", "Project name (default: the project ID)")
	f.BoolVar(&opts.schemaOnly, "schema-only", false, "Only create tables and indexes")
	f.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Give up after this long")

	return cmd
}

func runSeed(ctx context.Context, cmd *cobra.Command, opts seedOptions) error {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	logger := cliLogger()

	var coll *fileRepo.Collection
	var project models.Project
	if !opts.schemaOnly {
		if opts.file == "" {
			return errors.New("--file is required unless --schema-only is set")
		}
		var err error
		if coll, err = fileRepo.LoadFile(opts.file); err != nil {
			return err
		}
		if project, err = resolveProject(opts, coll, cfg.DevUserID); err != nil {
			return err
		}
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		return err
	}
	logger.Info("schema ready", "environment", cfg.Environment, "table_prefix", cfg.TablePrefix)
	if opts.schemaOnly {
		fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
		return nil
	}

	repoCfg := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
	if err := postgresDocsys.NewProjectRepository(repoCfg).Upsert(ctx, &project); err != nil {
		return err
	}

	writer := postgresDocsys.NewNodeWriter(repoCfg, postgres.NewTransactionManager(pool, logger))
	written, err := writer.ReplaceProject(ctx, project.ID, coll.Nodes)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded project %s (%s): %d of %d nodes written\n",
		project.ID, project.Name, written, len(coll.Nodes))
	return nil
}

// resolveProject fills in project identity from flags, the file and the environment
func resolveProject(opts seedOptions, coll *fileRepo.Collection, devUserID string) (models.Project, error) {
	projectID := opts.projectID
	if projectID == "" {
		if id, ok := fileRepo.ProjectIDFromPath(opts.file); ok {
			projectID = id
		}
	}
	if _, err := uuid.Parse(projectID); err != nil {
		return models.Project{}, fmt.Errorf("project ID %q is not a UUID; pass --project", projectID)
	}

	owner := opts.owner
	if owner == "" {
		owner = coll.Owner
	}
	if owner == "" {
		owner = devUserID
	}
	if _, err := uuid.Parse(owner); err != nil {
		return models.Project{}, fmt.Errorf("owner %q is not a UUID; pass --owner", owner)
	}

	name := opts.name
	if name == "" {
		name = projectID
	}
	return models.Project{ID: projectID, UserID: owner, Name: name}, nil
}
