package tasks

import (
	"sync"
	"time"

	"github.com/desertthunder/sheetstats/internal/models"
)

// StatusCell owns the live [models.JobStatus] of the current job.
//
// The job goroutine is the only writer; any number of readers take [StatusCell.Snapshot] copies.
type StatusCell struct {
	mu     sync.RWMutex
	status models.JobStatus
}

// NewStatusCell returns a cell holding an idle status.
func NewStatusCell() *StatusCell {
	return &StatusCell{status: models.JobStatus{Log: []string{}}}
}

// Snapshot returns an immutable copy of the current status.
func (c *StatusCell) Snapshot() models.JobStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status.Clone()
}

// Reset replaces the status with a fresh running state for a new job.
func (c *StatusCell) Reset(id, target string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = models.JobStatus{
		ID:        id,
		Running:   true,
		Log:       []string{},
		Target:    target,
		StartedAt: &now,
	}
}

// Append adds a message to the log.
func (c *StatusCell) Append(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Log = append(c.status.Log, msg)
}

// SetTotal records the number of entries to process.
func (c *StatusCell) SetTotal(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Total = total
}

// Advance marks a new entry in flight.
//
// Progress never moves backwards within a run.
func (c *StatusCell) Advance(current string, progress int, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Current = current
	c.status.Progress = max(c.status.Progress, progress)
	c.status.Log = append(c.status.Log, msg)
}

// Finish leaves the terminal snapshot: not running, progress 100.
func (c *StatusCell) Finish(outcome models.Outcome, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Running = false
	c.status.Progress = 100
	c.status.Outcome = outcome
	c.status.FinishedAt = &now
}
