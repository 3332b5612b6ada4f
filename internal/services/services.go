// package services defines the collaborators a sheet job talks to
//
// Statistics API (EnsembleData), Google Sheets, and the sheetstats HTTP API itself
package services

import (
	"context"

	"github.com/desertthunder/sheetstats/internal/models"
)

// Resolver resolves a raw link to its engagement counters.
//
// Implementations never return an error: a failed lookup yields [models.Unavailable].
type Resolver interface {
	Resolve(ctx context.Context, raw string) models.StatsResult
}

// TableStore reads the identifier column of a table and writes result batches back.
type TableStore interface {
	// ReadColumn returns every value of column one of table, header included.
	// Blank cells inside the column are returned as empty strings.
	ReadColumn(ctx context.Context, table string) ([]string, error)

	// WriteBatch writes each row's four cells right of the identifier column in one call.
	WriteBatch(ctx context.Context, table string, batch models.BatchWrite) error

	// Name returns the name of the backend (e.g., "Google Sheets", "SQLite")
	Name() string
}
