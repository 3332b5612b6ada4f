package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sheetstats/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStatusFetched MsgKind = iota
	MsgJobStarted
	MsgTick
)

type statusResult struct {
	status *models.JobStatus
	err    error
}

type startResult struct {
	target string
	err    error
}

// statusFetchedMsg is the constructor for [MsgStatusFetched]
func statusFetchedMsg(status *models.JobStatus, err error) Msg {
	return Msg{kind: MsgStatusFetched, data: statusResult{status, err}}
}

// jobStartedMsg is the constructor for [MsgJobStarted]
func jobStartedMsg(target string, err error) Msg {
	return Msg{kind: MsgJobStarted, data: startResult{target, err}}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg(t time.Time) Msg {
	return Msg{kind: MsgTick, data: t}
}
