package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsync/internal/provider"
	"github.com/desertthunder/ytsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	provider provider.Provider
	logger   *log.Logger
	output   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Provider provider.Provider // Optional override, used by tests
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:   opts.Config,
		provider: opts.Provider,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, syncCommand, backfillCommand, snapshotCommand, maintainCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger, e.g. when a TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// loadConfig resolves the configuration for a command invocation, preferring
// the --config flag over the runner's startup config.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	configPath := cmd.String("config")
	if configPath == "" {
		return r.config
	}
	if _, err := os.Stat(configPath); err != nil {
		return r.config
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		return r.config
	}
	return config
}

// openDatabase opens and configures the catalog store.
func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	return db, nil
}

// newProvider builds the yt-dlp provider from config unless a test injected one.
func (r *Runner) newProvider(config *shared.Config) provider.Provider {
	if r.provider != nil {
		return r.provider
	}
	return provider.NewYTDLP(provider.YTDLPOpts{
		Binary:      config.Provider.Binary,
		CookiesPath: config.Provider.CookiesPath,
		Timeout:     time.Duration(config.Provider.TimeoutSeconds) * time.Second,
	})
}

// backfillEnabled decides whether the enrichment pass may call the provider.
// Hosted CI runners have no provider cookies, so backfill is a documented
// no-op there regardless of config.
func backfillEnabled(config *shared.Config) bool {
	if os.Getenv("CI") != "" {
		return false
	}
	return config.Backfill.Enabled
}

// trackedURLs loads the tracked-feed list for a command invocation.
func (r *Runner) trackedURLs(cmd *cli.Command, config *shared.Config) ([]string, error) {
	path := cmd.String("feeds")
	if path == "" {
		path = config.Sync.FeedsPath
	}

	feeds, err := shared.LoadTrackedFeeds(path)
	if err != nil {
		return nil, err
	}
	if len(feeds) == 0 {
		r.logger.Warn("no provider feeds in tracked-feed list", "path", path)
	}
	return shared.TrackingURLs(feeds), nil
}

// Setup initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}
