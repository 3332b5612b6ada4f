// Package ui implements an interactive terminal client of the job service using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [TargetListView] : pick a table and start a job on it
//  2. [WatchView] : progress bar, row in flight and log tail of the current job
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Status is polled over HTTP on a fixed interval; the server never pushes updates.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, w, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
