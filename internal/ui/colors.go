package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/sheetstats/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

// Outcome renders the state word of a job snapshot in its color.
func (p *Palette) Outcome(status models.JobStatus) string {
	switch {
	case status.Running:
		return p.warn.Render("running")
	case status.Outcome == models.OutcomeSucceeded:
		return p.ok.Render(string(status.Outcome))
	case status.Outcome == models.OutcomeInvalid, status.Outcome == models.OutcomeFailed:
		return p.err.Render(string(status.Outcome))
	default:
		return p.help.Render("idle")
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
