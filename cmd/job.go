package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sheetstats/internal/formatter"
	"github.com/desertthunder/sheetstats/internal/models"
	"github.com/desertthunder/sheetstats/internal/server"
	"github.com/desertthunder/sheetstats/internal/services"
	"github.com/desertthunder/sheetstats/internal/shared"
	"github.com/desertthunder/sheetstats/internal/tasks"
	"github.com/desertthunder/sheetstats/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// Serve runs the HTTP API, plus the scheduler when job.schedule is set, until SIGINT or SIGTERM.
//
// A job still running at shutdown is cancelled and its pending rows are discarded.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, release, err := r.tableStore(ctx)
	if err != nil {
		return err
	}
	defer release()

	manager := r.newManager(ctx, store)

	var scheduler *tasks.Scheduler
	if spec := r.config.Job.Schedule; spec != "" {
		if scheduler, err = tasks.NewScheduler(spec, manager, r.logger); err != nil {
			return err
		}
	}

	router := r.newRouter(manager)

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}
	srv := server.NewServer(addr, router, r.logger)

	r.logger.Info("starting", "store", store.Name(), "targets", r.config.Sheets.Targets, "schedule", r.config.Job.Schedule)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx) })
	if scheduler != nil {
		g.Go(func() error { return scheduler.Run(gctx) })
	}

	err = g.Wait()
	if jerr := manager.Wait(); jerr != nil {
		r.logger.Warn("last job ended with an error", "error", jerr)
	}
	return err
}

// newRouter registers the HTTP API of manager and logs the served routes.
func (r *Runner) newRouter(manager server.JobManager) *server.BasicRouter {
	router := server.NewBasicRouter()
	server.Routes(router, manager, r.config.Job.Schedule, r.logger)
	r.logger.Debug("routes registered", "routes", router.Patterns())
	return router
}

// RunJob runs one job in the foreground and prints its final status.
func (r *Runner) RunJob(ctx context.Context, cmd *cli.Command) error {
	target, err := r.targetArg(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, release, err := r.tableStore(ctx)
	if err != nil {
		return err
	}
	defer release()

	r.logger.Info("running job", "target", target, "store", store.Name())

	status, err := r.newManager(ctx, store).Run(target)
	if isRejection(err) {
		return err
	}

	if cmd.Bool("json") {
		if werr := r.writeJSON(status, true); werr != nil {
			return werr
		}
	} else {
		r.writePlainHeader(fmt.Sprintf("Job on %s", target))
		r.writePlain("%s", formatter.StatusText(status, 0, time.Now()))
	}

	return err
}

// Start asks the server to start a job.
func (r *Runner) Start(ctx context.Context, cmd *cli.Command) error {
	target, err := r.targetArg(cmd)
	if err != nil {
		return err
	}
	if err := r.requireAPI(); err != nil {
		return err
	}

	if err := r.api.Start(ctx, target); err != nil {
		return err
	}

	return r.writePlain("Started job on %s\n", target)
}

// Status prints the server's current or last job.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAPI(); err != nil {
		return err
	}

	status, err := r.api.Status(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}
	return r.writePlain("%s", formatter.StatusText(*status, int(cmd.Int("tail")), time.Now()))
}

// Watch launches the interactive terminal UI against the server.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAPI(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.api, r.config.Sheets.Targets, cmd.Duration("interval"))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// resolveOutput is the JSON shape printed by [Runner.Resolve].
type resolveOutput struct {
	URL       string `json:"url"`
	Canonical string `json:"canonical"`
	models.StatsResult
}

// Resolve looks up one link without touching any table.
//
// Unlike a job, a failed lookup is reported as an error.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("url")
	if raw == "" {
		return fmt.Errorf("%w: video url", shared.ErrMissingArgument)
	}

	canonical := services.CanonicalURL(raw)

	var result models.StatsResult
	if r.resolver != nil {
		result = r.resolver.Resolve(ctx, raw)
	} else {
		var err error
		if result, err = r.statsService().Lookup(ctx, canonical); err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(resolveOutput{URL: raw, Canonical: canonical, StatsResult: result}, true)
	}
	return r.writePlain("%s\n", formatter.StatsLine(canonical, result))
}
