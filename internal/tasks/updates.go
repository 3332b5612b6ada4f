package tasks

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// PreviewLength is the number of characters of a link shown in status updates.
const PreviewLength = 45

// Job stage enumeration
type Stage int

const (
	Idle Stage = iota
	Validating
	Processing
	Finalizing
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Processing:
		return "processing"
	case Finalizing:
		return "finalizing"
	default:
		return ""
	}
}

// Preview shortens raw to [PreviewLength] characters, marking truncation with "...".
func Preview(raw string) string {
	if utf8.RuneCountInString(raw) <= PreviewLength {
		return raw
	}
	return string([]rune(raw)[:PreviewLength]) + "..."
}

// progressFor returns the percentage reached once the n-th entry of total is in flight.
func progressFor(n, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(n) / float64(total)))
	return min(max(p, 0), 100)
}

func startedMessage(target string) string {
	return fmt.Sprintf("Scraping %s...", target)
}

func headerMessage(header string) string {
	return fmt.Sprintf("Column A must be exactly %s", header)
}

func rowMessage(row int, preview string) string {
	return fmt.Sprintf("Row %d: %s", row, preview)
}

func emptyRowMessage(row int) string {
	return fmt.Sprintf("Empty row %d, stopped", row)
}

func updatedMessage(rows int) string {
	return fmt.Sprintf("Updated %d rows", rows)
}

func errorMessage(err error) string {
	return fmt.Sprintf("Error: %v", err)
}
