package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/sheetstats/internal/models"
	"github.com/desertthunder/sheetstats/internal/shared"
)

// linkColumn is the one-based column holding links; stats occupy the following [models.OutputColumns].
const linkColumn = 1

// TableRepository implements services.TableStore on the sheet_cells table.
type TableRepository struct {
	db *sql.DB
}

// NewTableRepository creates a new TableRepository with the given database connection
func NewTableRepository(db *sql.DB) *TableRepository {
	return &TableRepository{db: db}
}

// Name identifies the store in logs.
func (r *TableRepository) Name() string {
	return "SQLite"
}

// ReadColumn returns column one of sheet from row one, with missing cells as empty strings.
func (r *TableRepository) ReadColumn(ctx context.Context, sheet string) ([]string, error) {
	query := `
		SELECT row_num, value
		FROM sheet_cells
		WHERE sheet = ? AND col_num = ?
		ORDER BY row_num
	`

	rows, err := r.db.QueryContext(ctx, query, sheet, linkColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to read column: %w", err)
	}
	defer rows.Close()

	var column []string
	for rows.Next() {
		var (
			row   int
			value string
		)
		if err := rows.Scan(&row, &value); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		for len(column) < row-1 {
			column = append(column, "")
		}
		column = append(column, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cells: %w", err)
	}

	if column == nil {
		exists, err := r.exists(ctx, sheet)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", shared.ErrTableNotFound, sheet)
		}
		return []string{}, nil
	}

	return column, nil
}

func (r *TableRepository) exists(ctx context.Context, sheet string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sheet_cells WHERE sheet = ?", sheet).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to look up table: %w", err)
	}
	return n > 0, nil
}

// WriteBatch stores the four stats cells of every row in one transaction.
//
// Nothing is written when any row fails.
func (r *TableRepository) WriteBatch(ctx context.Context, sheet string, batch models.BatchWrite) error {
	if batch.Len() == 0 {
		return nil
	}

	query := `
		INSERT INTO sheet_cells (sheet, row_num, col_num, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(sheet, row_num, col_num) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	now := time.Now()
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare write: %w", err)
		}
		defer stmt.Close()

		for _, row := range batch.Rows {
			for i, cell := range row.Result.Cells() {
				col := linkColumn + 1 + i
				if _, err := stmt.ExecContext(ctx, sheet, row.Row, col, fmt.Sprint(cell), now); err != nil {
					return fmt.Errorf("failed to write row %d: %w", row.Row, err)
				}
			}
		}
		return nil
	})
}

// Load replaces sheet with a header row and one link per following row.
func (r *TableRepository) Load(ctx context.Context, sheet string, links []string) error {
	if strings.TrimSpace(sheet) == "" {
		return fmt.Errorf("%w: table name", shared.ErrMissingArgument)
	}

	query := `INSERT INTO sheet_cells (sheet, row_num, col_num, value, updated_at) VALUES (?, ?, ?, ?, ?)`

	now := time.Now()
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM sheet_cells WHERE sheet = ?", sheet); err != nil {
			return fmt.Errorf("failed to clear table: %w", err)
		}

		values := append([]string{models.HeaderLiteral}, links...)
		for i, value := range values {
			if _, err := tx.ExecContext(ctx, query, sheet, i+1, linkColumn, value, now); err != nil {
				return fmt.Errorf("failed to load row %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// Rows returns every row of sheet as its first five cells, empty where unset.
func (r *TableRepository) Rows(ctx context.Context, sheet string) ([][]string, error) {
	query := `
		SELECT row_num, col_num, value
		FROM sheet_cells
		WHERE sheet = ? AND col_num <= ?
		ORDER BY row_num, col_num
	`

	rows, err := r.db.QueryContext(ctx, query, sheet, linkColumn+models.OutputColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	defer rows.Close()

	var table [][]string
	for rows.Next() {
		var (
			row, col int
			value    string
		)
		if err := rows.Scan(&row, &col, &value); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		for len(table) < row {
			table = append(table, make([]string, linkColumn+models.OutputColumns))
		}
		table[row-1][col-1] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cells: %w", err)
	}

	if table == nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrTableNotFound, sheet)
	}
	return table, nil
}

// Sheets lists the names of every stored table.
func (r *TableRepository) Sheets(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT sheet FROM sheet_cells ORDER BY sheet")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var sheets []string
	for rows.Next() {
		var sheet string
		if err := rows.Scan(&sheet); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		sheets = append(sheets, sheet)
	}
	return sheets, rows.Err()
}
