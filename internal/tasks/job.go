package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sheetstats/internal/models"
	"github.com/desertthunder/sheetstats/internal/services"
	"github.com/desertthunder/sheetstats/internal/shared"
	"golang.org/x/time/rate"
)

// ValidationError reports a table whose identifier column does not start with [models.HeaderLiteral].
//
// No row has been read or written when it is returned.
type ValidationError struct {
	Target string
	Header string // First cell as read; empty when the column is empty
	Empty  bool
}

func (e *ValidationError) Error() string {
	if e.Empty {
		return fmt.Sprintf("table %s is empty", e.Target)
	}
	return fmt.Sprintf("table %s header is %q, want %q", e.Target, e.Header, models.HeaderLiteral)
}

func (e *ValidationError) Unwrap() error {
	return shared.ErrInvalidHeader
}

// StageError reports a failure that aborted a job in the given stage.
//
// Results resolved before the failure are discarded.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// OutcomeOf maps a [SheetJob.Run] error to the outcome recorded in the status.
func OutcomeOf(err error) models.Outcome {
	var verr *ValidationError
	switch {
	case err == nil:
		return models.OutcomeSucceeded
	case errors.As(err, &verr):
		return models.OutcomeInvalid
	default:
		return models.OutcomeFailed
	}
}

// JobOpts contains the collaborators of a [SheetJob].
type JobOpts struct {
	Store    services.TableStore
	Resolver services.Resolver
	Delay    time.Duration // Pause between the end of one lookup and the start of the next; 0 disables pacing
	Logger   *log.Logger
	Now      func() time.Time
}

// SheetJob resolves the stats of every link of a table and writes them back in one batch.
type SheetJob struct {
	store    services.TableStore
	resolver services.Resolver
	delay    time.Duration
	logger   *log.Logger
	now      func() time.Time
}

// NewSheetJob creates a new SheetJob with the provided collaborators.
func NewSheetJob(opts JobOpts) *SheetJob {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &SheetJob{
		store:    opts.Store,
		resolver: opts.Resolver,
		delay:    opts.Delay,
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

// pacer returns a limiter whose next token is a full delay after now.
func (j *SheetJob) pacer(now time.Time) *rate.Limiter {
	if j.delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	limiter := rate.NewLimiter(rate.Every(j.delay), 1)
	limiter.AllowN(now, 1)
	return limiter
}

// Run processes target, publishing progress into status.
//
// Rows are read from column one after the [models.HeaderLiteral] header until the first blank cell.
// Each link is resolved in row order, pausing the configured delay after every lookup,
// and the results are written with a single [services.TableStore.WriteBatch] call.
//
// The returned error is a [*ValidationError] when the header check fails and a [*StageError]
// when the run was cut short. Whatever happens, status ends not running with progress 100.
func (j *SheetJob) Run(ctx context.Context, target string, status *StatusCell) (err error) {
	stage := Validating

	defer func() {
		if r := recover(); r != nil {
			err = j.fail(status, stage, fmt.Errorf("panic: %v", r))
		}
		status.Finish(OutcomeOf(err), j.now())
	}()

	if j.store == nil || j.resolver == nil {
		return j.fail(status, stage, fmt.Errorf("%w: job is missing a table store or resolver", shared.ErrServiceUnavailable))
	}

	status.Append(startedMessage(target))

	column, err := j.store.ReadColumn(ctx, target)
	if err != nil {
		return j.fail(status, stage, err)
	}

	if len(column) == 0 || column[0] != models.HeaderLiteral {
		verr := &ValidationError{Target: target, Empty: len(column) == 0}
		if !verr.Empty {
			verr.Header = column[0]
		}
		status.Append(headerMessage(models.HeaderLiteral))
		j.logger.Warn("header validation failed", "target", target, "error", verr)
		return verr
	}

	stage = Processing
	entries := column[1:]

	total := 0
	for _, raw := range entries {
		if strings.TrimSpace(raw) != "" {
			total++
		}
	}
	status.SetTotal(total)

	var batch models.BatchWrite
	limiter := rate.NewLimiter(rate.Inf, 1)

	for i, raw := range entries {
		entry := models.Entry{Row: i + 2, Raw: raw}

		if strings.TrimSpace(entry.Raw) == "" {
			status.Append(emptyRowMessage(entry.Row))
			break
		}

		if err := limiter.Wait(ctx); err != nil {
			return j.fail(status, stage, err)
		}

		preview := Preview(entry.Raw)
		status.Advance(preview, progressFor(i+1, total), rowMessage(entry.Row, preview))

		result := j.resolver.Resolve(ctx, entry.Raw)
		j.logger.Debug("row resolved", "target", target, "row", entry.Row, "result", result)
		batch.Add(entry.Row, result)
		limiter = j.pacer(time.Now())
	}

	stage = Finalizing
	if batch.Len() > 0 {
		if err := j.store.WriteBatch(ctx, target, batch); err != nil {
			return j.fail(status, stage, err)
		}
		status.Append(updatedMessage(batch.Len()))
	}

	return nil
}

// fail records err in the status log and wraps it with the stage it interrupted.
func (j *SheetJob) fail(status *StatusCell, stage Stage, err error) error {
	status.Append(errorMessage(err))
	j.logger.Error("job aborted", "stage", stage, "error", err)
	return &StageError{Stage: stage, Err: err}
}
