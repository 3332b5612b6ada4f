// package formatter renders job status snapshots, lookup results and stored tables as text, JSON or CSV
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/sheetstats/internal/models"
	"github.com/dustin/go-humanize"
)

// StatsHeaders are the column names of a stored table row.
var StatsHeaders = []string{"Link", "Views", "Comments", "Shares", "Likes"}

// StatusText renders a human-readable summary of status with at most tail log lines.
//
// A non-positive tail prints the whole log.
func StatusText(status models.JobStatus, tail int, now time.Time) string {
	var buf strings.Builder

	state := "idle"
	switch {
	case status.Running:
		state = "running"
	case status.Outcome != models.OutcomeNone:
		state = string(status.Outcome)
	}

	target := status.Target
	if target == "" {
		target = "-"
	}

	fmt.Fprintf(&buf, "Table:    %s\n", target)
	fmt.Fprintf(&buf, "State:    %s\n", state)
	fmt.Fprintf(&buf, "Progress: %d%% of %s rows\n", status.Progress, humanize.Comma(int64(status.Total)))

	if status.Running && status.Current != "" {
		fmt.Fprintf(&buf, "Current:  %s\n", status.Current)
	}
	if status.StartedAt != nil {
		fmt.Fprintf(&buf, "Started:  %s\n", humanize.RelTime(*status.StartedAt, now, "ago", "from now"))
	}
	if status.FinishedAt != nil && status.StartedAt != nil {
		fmt.Fprintf(&buf, "Took:     %s\n", status.FinishedAt.Sub(*status.StartedAt).Round(time.Millisecond))
	}

	lines := status.Log
	if tail > 0 && len(lines) > tail {
		fmt.Fprintf(&buf, "\n... %d earlier lines\n", len(lines)-tail)
		lines = lines[len(lines)-tail:]
	} else if len(lines) > 0 {
		buf.WriteString("\n")
	}
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteString("\n")
	}

	return buf.String()
}

// StatusJSON renders status as indented JSON, matching the GET /status body.
func StatusJSON(status models.JobStatus) ([]byte, error) {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status: %w", err)
	}
	return append(data, '\n'), nil
}

// StatsLine renders one lookup result with thousands separators, or ERROR markers.
func StatsLine(link string, result models.StatsResult) string {
	if !result.Available {
		return fmt.Sprintf("%s\tviews=%s comments=%s shares=%s likes=%s",
			link, models.ErrorCell, models.ErrorCell, models.ErrorCell, models.ErrorCell)
	}
	return fmt.Sprintf("%s\tviews=%s comments=%s shares=%s likes=%s",
		link,
		humanize.Comma(result.Views),
		humanize.Comma(result.Comments),
		humanize.Comma(result.Shares),
		humanize.Comma(result.Likes),
	)
}

// TableToCSV converts stored rows to CSV with a [StatsHeaders] header line.
//
// The stored header row (column one equal to LINK) is replaced by the CSV header.
func TableToCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(StatsHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == models.HeaderLiteral {
			continue
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TableToText renders stored rows as tab-separated text, one row per line, header included.
func TableToText(rows [][]string) []byte {
	var buf bytes.Buffer
	for _, row := range rows {
		buf.WriteString(strings.Join(row, "\t"))
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// WriteCSVExport writes rows as CSV to path and returns the number of data rows written.
func WriteCSVExport(rows [][]string, path string) (int, error) {
	data, err := TableToCSV(rows)
	if err != nil {
		return 0, fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write CSV file: %w", err)
	}

	n := len(rows)
	if n > 0 && len(rows[0]) > 0 && rows[0][0] == models.HeaderLiteral {
		n--
	}
	return n, nil
}
