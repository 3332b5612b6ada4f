package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/sheetstats/internal/formatter"
	"github.com/desertthunder/sheetstats/internal/repositories"
	"github.com/desertthunder/sheetstats/internal/shared"
	"github.com/urfave/cli/v3"
)

// readLinks returns the lines of path with trailing blank lines removed.
//
// Blank lines in the middle are kept: a job stops at the first one.
func readLinks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open links file: %w", err)
	}
	defer f.Close()

	var links []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		links = append(links, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read links file: %w", err)
	}

	for len(links) > 0 && links[len(links)-1] == "" {
		links = links[:len(links)-1]
	}
	return links, nil
}

// TableLoad replaces a table of the local database with the links of --file.
func (r *Runner) TableLoad(ctx context.Context, cmd *cli.Command) error {
	target, err := r.targetArg(cmd)
	if err != nil {
		return err
	}
	r.requireSQLite()

	links, err := readLinks(cmd.String("file"))
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.NewTableRepository(db).Load(ctx, target, links); err != nil {
		return err
	}

	r.logger.Info("table loaded", "target", target, "links", len(links))
	return r.writePlain("✓ Loaded %d links into %s\n", len(links), target)
}

// TableDump prints a table of the local database, or writes it as CSV with --output.
func (r *Runner) TableDump(ctx context.Context, cmd *cli.Command) error {
	target, err := r.targetArg(cmd)
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := repositories.NewTableRepository(db).Rows(ctx, target)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		n, err := formatter.WriteCSVExport(rows, path)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %d rows to %s\n", n, path)
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, true)
	}

	if _, err := r.output.Write(formatter.TableToText(rows)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// TableList prints the tables stored in the local database.
func (r *Runner) TableList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	sheets, err := repositories.NewTableRepository(db).Sheets(ctx)
	if err != nil {
		return err
	}
	if len(sheets) == 0 {
		return fmt.Errorf("%w: no tables in %s", shared.ErrTableNotFound, r.config.Database.Path)
	}

	for _, sheet := range sheets {
		r.writePlain("%s\n", sheet)
	}
	return nil
}
