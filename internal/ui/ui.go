package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sheetstats/internal/models"
	"github.com/desertthunder/sheetstats/internal/shared"
)

// DefaultInterval is the status polling period.
const DefaultInterval = time.Second

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TargetListView ViewState = iota
	WatchView
)

// StatusClient is the job service as seen by the TUI.
//
// [services.APIService] is the production implementation.
//
// [services.APIService]: github.com/desertthunder/sheetstats/internal/services.APIService
type StatusClient interface {
	Start(ctx context.Context, target string) error
	Status(ctx context.Context) (*models.JobStatus, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	client   StatusClient
	view     ViewState
	interval time.Duration
	width    int
	height   int
	targets  []string
	list     list.Model
	status   *models.JobStatus
	notice   string
	err      error
	progress progress.Model
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model polling client every interval.
func NewModel(ctx context.Context, client StatusClient, targets []string, interval time.Duration) *Model {
	if interval <= 0 {
		interval = DefaultInterval
	}

	l := list.New(targetItems(targets, ""), list.NewDefaultDelegate(), 40, 16)
	l.Title = "Tables"
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return &Model{
		ctx:      ctx,
		client:   client,
		view:     TargetListView,
		interval: interval,
		targets:  targets,
		list:     l,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init initializes the TUI by fetching the status and starting the poll loop.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), m.tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, max(msg.Height-10, 4))
		m.progress.Width = min(max(msg.Width-8, 10), 60)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case TargetListView:
			return m.handleTargetListKeys(msg)
		case WatchView:
			return m.handleWatchKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTick:
		return m, tea.Batch(m.fetchStatus(), m.tick())

	case MsgStatusFetched:
		res := msg.data.(statusResult)
		m.err = res.err
		if res.err == nil && res.status != nil {
			m.status = res.status
			m.list.SetItems(targetItems(m.targets, res.status.Target))
		}
		return m, nil

	case MsgJobStarted:
		res := msg.data.(startResult)
		if res.err != nil {
			m.notice = styles.err.Render(rejection(res.target, res.err))
			return m, nil
		}
		m.notice = styles.ok.Render(fmt.Sprintf("Started %s", res.target))
		m.view = WatchView
		return m, m.fetchStatus()
	}
	return m, nil
}

// rejection explains why a start request was refused.
func rejection(target string, err error) string {
	switch {
	case errors.Is(err, shared.ErrJobRunning):
		return "A job is already running"
	case errors.Is(err, shared.ErrInvalidTarget):
		return fmt.Sprintf("%s is not a configured table", target)
	case errors.Is(err, shared.ErrServiceUnavailable):
		return "Server unreachable"
	default:
		return fmt.Sprintf("Start failed: %v", err)
	}
}

func (m *Model) handleTargetListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.start):
		if item, ok := m.list.SelectedItem().(targetItem); ok {
			return m, m.startJob(item.name)
		}
		return m, nil
	case key.Matches(msg, m.keys.watch):
		m.view = WatchView
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchStatus()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleWatchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = TargetListView
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchStatus()
	}
	return m, nil
}

func (m *Model) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := m.client.Status(m.ctx)
		return statusFetchedMsg(status, err)
	}
}

func (m *Model) startJob(target string) tea.Cmd {
	return func() tea.Msg {
		return jobStartedMsg(target, m.client.Start(m.ctx, target))
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var b strings.Builder

	switch m.view {
	case TargetListView:
		b.WriteString(m.renderTargetList())
	case WatchView:
		b.WriteString(m.renderWatch())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.notice)
	}
	return b.String()
}

func (m *Model) renderTargetList() string {
	summary := styles.help.Render("No job has run yet")
	if m.status != nil && m.status.Target != "" {
		summary = fmt.Sprintf("%s %s %d%%", m.status.Target, styles.Outcome(*m.status), m.status.Progress)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.start, m.keys.watch, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", m.list.View(), summary, helpView)
}

func (m *Model) renderWatch() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.refresh, m.keys.quit})

	if m.status == nil {
		return fmt.Sprintf("%s\n\nWaiting for status...\n\n%s", styles.title.Render("Job"), helpView)
	}

	s := *m.status
	target := s.Target
	if target == "" {
		target = "no job"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Job: %s", target)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s\n", m.progress.ViewAs(float64(s.Progress)/100), styles.Outcome(s))
	if s.Running && s.Current != "" {
		fmt.Fprintf(&b, "%s\n", styles.help.Render(s.Current))
	}
	b.WriteString("\n")
	for _, line := range m.logTail(s.Log) {
		if strings.HasPrefix(line, "Error:") {
			line = styles.err.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpView)
	return b.String()
}

// logTail returns the last lines of log that fit the window.
func (m *Model) logTail(log []string) []string {
	n := 10
	if m.height > 0 {
		n = max(m.height-10, 3)
	}
	if len(log) > n {
		return log[len(log)-n:]
	}
	return log
}
