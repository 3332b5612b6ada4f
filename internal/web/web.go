// Package web renders the browser front end of the job service.
//
// The index page lists the configured tables with one start button each and polls
// GET /status to draw the progress bar and log, so it needs nothing beyond the JSON API.
//
// Routes served with this package's output:
//
//	GET  /        → index page
//	POST /start   → start a job (JSON)
//	GET  /status  → status snapshot (JSON)
package web

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templates embed.FS

var index = template.Must(template.ParseFS(templates, "templates/index.html"))

// IndexData is the view model of the index page.
type IndexData struct {
	Title    string
	Targets  []string
	Schedule string // Cron expression of scheduled runs; empty when disabled
}

// RenderIndex writes the index page for data to w.
func RenderIndex(w io.Writer, data IndexData) error {
	if data.Title == "" {
		data.Title = "sheetstats"
	}
	return index.Execute(w, data)
}
