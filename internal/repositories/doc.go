// Package repositories implements SQLite persistence for local tables.
//
// A table is stored one cell per row in sheet_cells, keyed by (sheet, row, col) with one-based
// positions, mirroring the layout of a spreadsheet tab.
//
// Key Implementations:
//   - [TableRepository] : a [services.TableStore] reading column one and writing stats into columns two to five
//
// [services.TableStore]: github.com/desertthunder/sheetstats/internal/services.TableStore
package repositories
