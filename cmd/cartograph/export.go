package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cartograph/internal/config"
	models "cartograph/internal/domain/models/docsystem"
	fileRepo "cartograph/internal/repository/file"
	"cartograph/internal/repository/postgres"
	postgresDocsys "cartograph/internal/repository/postgres/docsystem"
)

type exportOptions struct {
	projectID string
	owner     string
	out       string
	timeout   time.Duration
}

func exportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export PROJECT_ID",
		Short: "Write a stored project as a node file",
		Long: "Reads the project's folders and documents from the explorer database and writes them\n" +
			"in the node file format accepted by render, seed and the file node source.",
		Example: "  cartograph export 3f0c... --out data/3f0c....yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.projectID = args[0]
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, opts.timeout)
			defer cancel()
			return runExport(ctx, cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.owner, "owner", "", "Owner user UUID (default: DEV_USER_ID)")
	f.StringVarP(&opts.out, "out", "o", "", "Write to this file instead of stdout")
	f.DurationVar(&opts.timeout, "timeout", time.Minute, "Give up after this long")

	return cmd
}

func runExport(ctx context.Context, stdout io.Writer, opts exportOptions) error {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	owner := opts.owner
	if owner == "" {
		owner = cfg.DevUserID
	}
	logger := cliLogger()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	repoCfg := &postgres.RepositoryConfig{Pool: pool, Tables: postgres.NewTableNames(cfg.TablePrefix), Logger: logger}
	repo := postgresDocsys.NewNodeRepository(repoCfg, postgres.NewSnapshotTransactionManager(pool, logger))
	nodes, err := repo.ListByProject(ctx, owner, opts.projectID)
	if err != nil {
		return fmt.Errorf("export project %s: %w", opts.projectID, err)
	}

	w := stdout
	if opts.out != "" {
		out, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()
		w = out
	}
	return writeCollection(w, owner, nodes)
}

// writeCollection encodes nodes as a node file owned by owner
func writeCollection(w io.Writer, owner string, nodes []models.DocumentNode) error {
	data, err := fileRepo.Encode(&fileRepo.Collection{Owner: owner, Nodes: nodes})
	if err != nil {
		return fmt.Errorf("encode node file: %w", err)
	}
	_, err = w.Write(data)
	return err
}
