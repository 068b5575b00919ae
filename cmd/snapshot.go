package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytsync/internal/export"
	"github.com/desertthunder/ytsync/internal/repositories"
	"github.com/desertthunder/ytsync/internal/sync"
	"github.com/urfave/cli/v3"
)

// Snapshot exports the startup snapshot document as JSON.
func (r *Runner) Snapshot(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshot, err := export.BuildSnapshot(repositories.NewMaintenanceRepository(db))
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		if err := export.WriteSnapshot(snapshot, output); err != nil {
			return err
		}
		r.logger.Info("snapshot written", "path", output, "feeds", len(snapshot.Feeds))
		return nil
	}

	data, err := snapshot.JSON(true)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if _, err := r.output.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Maintain runs store upkeep on its own.
func (r *Runner) Maintain(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	return sync.Maintain(repositories.NewMaintenanceRepository(db), r.logger)
}
