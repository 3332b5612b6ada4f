package tasks

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sheetstats/internal/models"
	"github.com/desertthunder/sheetstats/internal/shared"
)

// JobRunner runs one job against target, publishing into status.
//
// [SheetJob] is the production implementation.
type JobRunner interface {
	Run(ctx context.Context, target string, status *StatusCell) error
}

// ManagerOpts contains configuration for creating a [Manager].
type ManagerOpts struct {
	Job     JobRunner
	Targets []string        // Tables a job may be started on
	Context context.Context // Parent of every job; cancel it to stop a job between rows
	Logger  *log.Logger
}

// Manager owns the single in-flight job and its status.
//
// At most one job runs at a time: admission is an atomic compare-and-swap on the running flag,
// so two simultaneous Start calls can never both succeed.
type Manager struct {
	job     JobRunner
	targets []string
	ctx     context.Context
	logger  *log.Logger
	status  *StatusCell
	running atomic.Bool

	mu      sync.Mutex
	current *jobRun
}

// jobRun is the handle of one started job; err is set before done is closed.
type jobRun struct {
	done chan struct{}
	err  error
}

// NewManager creates a new Manager with an idle status.
func NewManager(opts ManagerOpts) *Manager {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Manager{
		job:     opts.Job,
		targets: slices.Clone(opts.Targets),
		ctx:     opts.Context,
		logger:  opts.Logger,
		status:  NewStatusCell(),
	}
}

// Targets returns the tables a job may be started on.
func (m *Manager) Targets() []string {
	return slices.Clone(m.targets)
}

// Allowed reports whether target is one of the configured tables.
func (m *Manager) Allowed(target string) bool {
	return slices.Contains(m.targets, target)
}

// Running reports whether a job is in flight.
func (m *Manager) Running() bool {
	return m.running.Load()
}

// Status returns a snapshot of the current or last job.
func (m *Manager) Status() models.JobStatus {
	return m.status.Snapshot()
}

// Start launches a job on target in the background and returns the fresh status.
//
// It fails with [shared.ErrJobRunning] or [shared.ErrInvalidTarget], checked in that order,
// without touching the status.
func (m *Manager) Start(target string) (models.JobStatus, error) {
	if m.running.Load() {
		return m.status.Snapshot(), fmt.Errorf("%w: %s", shared.ErrJobRunning, m.status.Snapshot().Target)
	}

	if !m.Allowed(target) {
		return m.status.Snapshot(), fmt.Errorf("%w: %q", shared.ErrInvalidTarget, target)
	}

	if !m.running.CompareAndSwap(false, true) {
		return m.status.Snapshot(), fmt.Errorf("%w: %s", shared.ErrJobRunning, m.status.Snapshot().Target)
	}

	id := shared.GenerateID()
	m.status.Reset(id, target, time.Now())

	run := &jobRun{done: make(chan struct{})}
	m.mu.Lock()
	m.current = run
	m.mu.Unlock()

	go m.run(id, target, run)

	return m.status.Snapshot(), nil
}

func (m *Manager) run(id, target string, run *jobRun) {
	defer close(run.done)
	defer m.running.Store(false)

	logger := shared.WithLogger(m.logger, "job", id, "target", target)
	logger.Info("job started")

	err := m.job.Run(m.ctx, target, m.status)
	run.err = err

	snapshot := m.status.Snapshot()
	if snapshot.Running {
		m.status.Finish(OutcomeOf(err), time.Now())
		snapshot = m.status.Snapshot()
	}
	if err != nil {
		logger.Warn("job ended", "outcome", snapshot.Outcome, "error", err)
		return
	}
	logger.Info("job ended", "outcome", snapshot.Outcome, "rows", snapshot.Total)
}

// Wait blocks until the most recently started job, if any, has ended and returns its error.
func (m *Manager) Wait() error {
	m.mu.Lock()
	run := m.current
	m.mu.Unlock()

	if run == nil {
		return nil
	}
	<-run.done
	return run.err
}

// Run starts a job on target and blocks until it ends.
func (m *Manager) Run(target string) (models.JobStatus, error) {
	if _, err := m.Start(target); err != nil {
		return m.Status(), err
	}
	err := m.Wait()
	return m.Status(), err
}
