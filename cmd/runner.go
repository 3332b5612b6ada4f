package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sheetstats/internal/repositories"
	"github.com/desertthunder/sheetstats/internal/services"
	"github.com/desertthunder/sheetstats/internal/shared"
	"github.com/desertthunder/sheetstats/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	store      services.TableStore
	resolver   services.Resolver
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Store and Resolver replace the ones built from the config when set.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.APIService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Store      services.TableStore
	Resolver   services.Resolver
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
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      opts.Store,
		resolver:   opts.Resolver,
	}
}

// SetLogger replaces the logger used by every command.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "sheetstats",
		Usage:   "Fill spreadsheet rows with TikTok video statistics",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "server",
				Usage: "Base URL of a running sheetstats server (default: from config port)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, runCommand, startCommand, statusCommand, watchCommand, resolveCommand, setupCommand, tableCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config, falling back to defaults when the file is absent.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.configPath = cmd.String("config")
	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	r.config.ApplyEnv()

	if r.api == nil {
		baseURL := cmd.String("server")
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://127.0.0.1:%d", r.config.Server.Port)
		}
		r.api = services.NewAPIService(baseURL, r.httpClient)
	}

	return ctx, nil
}

// tableStore builds the store selected by the config.
//
// The returned function releases the store's resources.
func (r *Runner) tableStore(ctx context.Context) (services.TableStore, func(), error) {
	if r.store != nil {
		return r.store, func() {}, nil
	}

	switch r.config.Store.Driver {
	case shared.DriverSQLite:
		db, err := r.openDatabase()
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewTableRepository(db), func() { db.Close() }, nil

	case shared.DriverSheets:
		client, err := services.NewSheetsClient(ctx, r.config.Sheets.CredentialsPath)
		if err != nil {
			return nil, nil, err
		}
		store, err := services.NewSheetsService(services.SheetsOpts{
			SpreadsheetID: r.config.Sheets.SpreadsheetID,
			BaseURL:       r.config.Sheets.BaseURL,
			HTTPClient:    client,
			Logger:        r.logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown store driver %q", shared.ErrInvalidConfig, r.config.Store.Driver)
	}
}

func (r *Runner) openDatabase() (*sql.DB, error) {
	r.logger.Debug("opening database", "path", r.config.Database.Path)
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func (r *Runner) statsResolver() services.Resolver {
	if r.resolver != nil {
		return r.resolver
	}
	return r.statsService()
}

func (r *Runner) statsService() *services.StatsService {
	if r.config.Stats.Token == "" {
		r.logger.Warn("no statistics API token configured", "env", shared.EnvToken)
	}
	return services.NewStatsService(services.StatsOpts{
		BaseURL:  r.config.Stats.BaseURL,
		Endpoint: r.config.Stats.Endpoint,
		Token:    r.config.Stats.Token,
		Timeout:  r.config.Stats.Timeout(),
		Logger:   r.logger,
	})
}

// newManager wires a [tasks.SheetJob] on store into a [tasks.Manager] whose jobs stop when ctx is done.
func (r *Runner) newManager(ctx context.Context, store services.TableStore) *tasks.Manager {
	job := tasks.NewSheetJob(tasks.JobOpts{
		Store:    store,
		Resolver: r.statsResolver(),
		Delay:    r.config.Job.Delay(),
		Logger:   r.logger,
	})

	return tasks.NewManager(tasks.ManagerOpts{
		Job:     job,
		Targets: r.config.Sheets.Targets,
		Context: ctx,
		Logger:  r.logger,
	})
}

func (r *Runner) requireAPI() error {
	if r.api == nil {
		return fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) targetArg(cmd *cli.Command) (string, error) {
	target := cmd.StringArg("target")
	if target == "" {
		return "", fmt.Errorf("%w: target table name (one of %v)", shared.ErrMissingArgument, r.config.Sheets.Targets)
	}
	return target, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// isRejection reports whether err is a refused start rather than a failure.
func isRejection(err error) bool {
	return errors.Is(err, shared.ErrJobRunning) || errors.Is(err, shared.ErrInvalidTarget)
}
