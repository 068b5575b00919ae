package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytsync/internal/export"
	"github.com/desertthunder/ytsync/internal/repositories"
	"github.com/desertthunder/ytsync/internal/shared"
	"github.com/desertthunder/ytsync/internal/sync"
	"github.com/desertthunder/ytsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// Sync runs one full cycle: reconciliation over all tracked feeds, the
// enrichment pass over the committed state, then store maintenance.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	urls, err := r.trackedURLs(cmd, config)
	if err != nil {
		return err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	feedRepo := repositories.NewFeedRepository(db)
	itemRepo := repositories.NewItemRepository(db)
	maintRepo := repositories.NewMaintenanceRepository(db)

	engine := sync.NewEngine(sync.EngineOpts{
		Provider:              r.newProvider(config),
		Feeds:                 feedRepo,
		Items:                 itemRepo,
		Logger:                r.logger,
		ChannelDepthThreshold: config.Sync.ChannelDepthThreshold,
	})
	backfiller := sync.NewBackfiller(sync.BackfillerOpts{
		Provider:  r.newProvider(config),
		Feeds:     feedRepo,
		Items:     itemRepo,
		Logger:    r.logger,
		RateLimit: config.Provider.RateLimit,
	})

	runCycle := func(progress chan<- sync.ProgressUpdate) (*sync.SyncReport, *sync.BackfillReport, error) {
		report, err := engine.SyncAll(ctx, urls, progress)
		if err != nil {
			return report, nil, err
		}

		var backfillReport *sync.BackfillReport
		if !cmd.Bool("skip-backfill") {
			backfillReport, err = backfiller.Backfill(ctx, urls, config.Backfill.QuotaPerFeed, backfillEnabled(config), progress)
			if err != nil {
				return report, backfillReport, err
			}
		}

		// Maintenance runs after all mutations are committed; its failure is
		// non-fatal to the persisted result.
		if !cmd.Bool("skip-maintenance") {
			_ = sync.Maintain(maintRepo, r.logger)
		}
		return report, backfillReport, nil
	}

	if cmd.Bool("tui") {
		return r.runCycleTUI(runCycle)
	}

	report, backfillReport, err := runCycle(nil)
	if report != nil {
		if _, werr := r.output.Write(export.FormatSyncReport(report)); werr != nil {
			return fmt.Errorf("failed to write report: %w", werr)
		}
	}
	if backfillReport != nil {
		if _, werr := r.output.Write(export.FormatBackfillReport(backfillReport)); werr != nil {
			return fmt.Errorf("failed to write report: %w", werr)
		}
	}
	return err
}

// runCycleTUI drives the cycle behind a bubbletea progress view.
//
// Logs are redirected to a file so they do not corrupt the rendering.
func (r *Runner) runCycleTUI(runCycle func(chan<- sync.ProgressUpdate) (*sync.SyncReport, *sync.BackfillReport, error)) error {
	fileLogger, err := shared.NewFileLogger("./tmp/ytsync-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	progress := make(chan sync.ProgressUpdate, 16)
	outcome := make(chan ui.Outcome, 1)

	go func() {
		report, backfillReport, err := runCycle(progress)
		close(progress)
		outcome <- ui.Outcome{Report: report, Backfill: backfillReport, Err: err}
	}()

	p := tea.NewProgram(ui.NewModel(progress, outcome))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// Backfill runs the enrichment pass on its own.
func (r *Runner) Backfill(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	urls, err := r.trackedURLs(cmd, config)
	if err != nil {
		return err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	quota := int(cmd.Int("quota"))
	if quota <= 0 {
		quota = config.Backfill.QuotaPerFeed
	}

	backfiller := sync.NewBackfiller(sync.BackfillerOpts{
		Provider:  r.newProvider(config),
		Feeds:     repositories.NewFeedRepository(db),
		Items:     repositories.NewItemRepository(db),
		Logger:    r.logger,
		RateLimit: config.Provider.RateLimit,
	})

	report, err := backfiller.Backfill(ctx, urls, quota, backfillEnabled(config), nil)
	if report != nil {
		if _, werr := r.output.Write(export.FormatBackfillReport(report)); werr != nil {
			return fmt.Errorf("failed to write report: %w", werr)
		}
	}
	return err
}
