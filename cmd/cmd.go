// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes the catalog database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// syncCommand runs one full cycle: reconciliation, backfill, maintenance.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run one reconciliation pass over all tracked feeds",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "feeds",
				Usage: "Path to the tracked-feed list (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "skip-backfill",
				Usage: "Skip the enrichment pass",
			},
			&cli.BoolFlag{
				Name:  "skip-maintenance",
				Usage: "Skip post-pass store maintenance",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show an interactive progress view",
			},
		},
		Action: r.Sync,
	}
}

// backfillCommand runs the enrichment pass on its own.
func backfillCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "backfill",
		Usage: "Enrich stored items lacking description or publish date",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "feeds",
				Usage: "Path to the tracked-feed list (overrides config)",
			},
			&cli.IntFlag{
				Name:  "quota",
				Usage: "Maximum detail fetches per feed (overrides config)",
			},
		},
		Action: r.Backfill,
	}
}

// snapshotCommand exports the startup snapshot document.
func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Export the startup snapshot (feeds, stats, tags) as JSON",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (defaults to stdout)",
			},
		},
		Action: r.Snapshot,
	}
}

// maintainCommand runs store upkeep on its own.
func maintainCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "maintain",
		Usage:  "Optimize the search index and compact the store",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Maintain,
	}
}
