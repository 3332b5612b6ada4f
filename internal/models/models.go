// package models defines the data model for the sheet stats job
package models

import (
	"fmt"
	"time"
)

// HeaderLiteral is the required value of the identifier column's header cell.
const HeaderLiteral = "LINK"

// ErrorCell is written in place of each counter when resolution fails.
const ErrorCell = "ERROR"

// OutputColumns is the number of cells written after the identifier column.
const OutputColumns = 4

// Entry is one input record read from the identifier column.
type Entry struct {
	Row int    // 1-based row position; row 1 is the header
	Raw string // Cell content as read
}

// StatsResult holds the engagement counters of one entry.
type StatsResult struct {
	Views     int64 `json:"views"`
	Comments  int64 `json:"comments"`
	Shares    int64 `json:"shares"`
	Likes     int64 `json:"likes"`
	Available bool  `json:"available"`
}

// NewStatsResult returns an available result with the given counters.
func NewStatsResult(views, comments, shares, likes int64) StatsResult {
	return StatsResult{Views: views, Comments: comments, Shares: shares, Likes: likes, Available: true}
}

// Unavailable returns the marker for an entry whose stats could not be resolved.
func Unavailable() StatsResult {
	return StatsResult{}
}

// Cells returns the four output cells in column order: views, comments, shares, likes.
func (s StatsResult) Cells() []any {
	if !s.Available {
		return []any{ErrorCell, ErrorCell, ErrorCell, ErrorCell}
	}
	return []any{s.Views, s.Comments, s.Shares, s.Likes}
}

func (s StatsResult) String() string {
	if !s.Available {
		return "unavailable"
	}
	return fmt.Sprintf("views=%d comments=%d shares=%d likes=%d", s.Views, s.Comments, s.Shares, s.Likes)
}

// RowResult pairs a row position with its resolved stats.
type RowResult struct {
	Row    int
	Result StatsResult
}

// BatchWrite is the ordered set of row results applied to a table in one call.
type BatchWrite struct {
	Rows []RowResult
}

// Add appends a row result; rows must be added in increasing order.
func (b *BatchWrite) Add(row int, result StatsResult) {
	b.Rows = append(b.Rows, RowResult{Row: row, Result: result})
}

// Len returns the number of queued rows.
func (b *BatchWrite) Len() int {
	return len(b.Rows)
}

// Outcome describes how a job run ended.
type Outcome string

const (
	OutcomeNone      Outcome = ""          // Not finished yet, or no job has run
	OutcomeSucceeded Outcome = "succeeded" // All entries processed and written
	OutcomeInvalid   Outcome = "invalid"   // Header validation failed, nothing written
	OutcomeFailed    Outcome = "failed"    // Aborted by an error mid-run
)

// JobStatus is a snapshot of the live job state.
type JobStatus struct {
	ID         string     `json:"id"`
	Running    bool       `json:"running"`
	Progress   int        `json:"progress"`
	Total      int        `json:"total"`
	Current    string     `json:"current"`
	Log        []string   `json:"log"`
	Target     string     `json:"worksheet"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Outcome    Outcome    `json:"outcome"`
}

// Clone returns a deep copy that shares no memory with s.
func (s JobStatus) Clone() JobStatus {
	c := s
	c.Log = append([]string(nil), s.Log...)
	if c.Log == nil {
		c.Log = []string{}
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		c.StartedAt = &t
	}
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		c.FinishedAt = &t
	}
	return c
}
