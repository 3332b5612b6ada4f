package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sheetstats/internal/models"
	"github.com/desertthunder/sheetstats/internal/shared"
)

type fakeClient struct {
	mu       sync.Mutex
	status   *models.JobStatus
	statErr  error
	startErr error
	started  []string
}

func (f *fakeClient) Start(ctx context.Context, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, target)
	return f.startErr
}

func (f *fakeClient) Status(ctx context.Context) (*models.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.statErr
}

func newTestModel(client StatusClient) *Model {
	return NewModel(context.Background(), client, []string{"SCRIPTED", "REPOST", "ARK"}, time.Millisecond)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Update(t *testing.T) {
	t.Run("Quit", func(t *testing.T) {
		m := newTestModel(&fakeClient{})

		_, cmd := m.Update(keyRunes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("Enter Starts Selected Table", func(t *testing.T) {
		client := &fakeClient{}
		m := newTestModel(client)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd == nil {
			t.Fatal("expected start command")
		}

		msg, ok := cmd().(Msg)
		if !ok || msg.kind != MsgJobStarted {
			t.Fatalf("expected MsgJobStarted, got %#v", msg)
		}
		if len(client.started) != 1 || client.started[0] != "SCRIPTED" {
			t.Errorf("expected SCRIPTED to be started, got %v", client.started)
		}

		m.Update(msg)
		if m.view != WatchView {
			t.Error("expected watch view after a successful start")
		}
		if !strings.Contains(m.View(), "Started SCRIPTED") {
			t.Errorf("expected start notice, got:\n%s", m.View())
		}
	})

	t.Run("Rejected Start Stays On List", func(t *testing.T) {
		m := newTestModel(&fakeClient{})

		m.Update(jobStartedMsg("ARK", shared.ErrJobRunning))

		if m.view != TargetListView {
			t.Error("rejected start should stay on the table list")
		}
		if !strings.Contains(m.View(), "A job is already running") {
			t.Errorf("expected rejection notice, got:\n%s", m.View())
		}
	})

	t.Run("Status Fetched", func(t *testing.T) {
		m := newTestModel(&fakeClient{})
		status := &models.JobStatus{Running: true, Progress: 50, Current: "https://x", Target: "ARK", Log: []string{"Scraping ARK...", "Row 2: https://x"}}

		m.Update(statusFetchedMsg(status, nil))
		m.Update(keyRunes("w"))

		out := m.View()
		for _, want := range []string{"Job: ARK", "running", "https://x", "Row 2: https://x"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in:\n%s", want, out)
			}
		}
	})

	t.Run("Status Error Keeps Last Snapshot", func(t *testing.T) {
		m := newTestModel(&fakeClient{})
		m.Update(statusFetchedMsg(&models.JobStatus{Target: "REPOST", Progress: 100, Outcome: models.OutcomeSucceeded}, nil))

		m.Update(statusFetchedMsg(nil, errors.New("connection refused")))

		if m.status == nil || m.status.Target != "REPOST" {
			t.Error("last snapshot should be kept on error")
		}
		if !strings.Contains(m.View(), "connection refused") {
			t.Errorf("expected error in view, got:\n%s", m.View())
		}

		m.Update(statusFetchedMsg(&models.JobStatus{Target: "REPOST"}, nil))
		if strings.Contains(m.View(), "connection refused") {
			t.Error("error should clear after a successful poll")
		}
	})

	t.Run("Tick Polls", func(t *testing.T) {
		client := &fakeClient{status: &models.JobStatus{Target: "ARK"}}
		m := newTestModel(client)

		_, cmd := m.Update(tickMsg(time.Now()))
		if cmd == nil {
			t.Fatal("expected poll commands after a tick")
		}
	})

	t.Run("Back From Watch", func(t *testing.T) {
		m := newTestModel(&fakeClient{})
		m.Update(keyRunes("w"))
		if m.view != WatchView {
			t.Fatal("expected watch view")
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != TargetListView {
			t.Error("expected table list after esc")
		}
	})

	t.Run("Window Size", func(t *testing.T) {
		m := newTestModel(&fakeClient{})
		m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})

		if m.progress.Width != 60 {
			t.Errorf("expected progress width capped at 60, got %d", m.progress.Width)
		}

		log := make([]string, 30)
		if got := len(m.logTail(log)); got != 10 {
			t.Errorf("expected 10 log lines for height 20, got %d", got)
		}
	})
}

func TestModel_View(t *testing.T) {
	t.Run("List Before Any Job", func(t *testing.T) {
		out := newTestModel(&fakeClient{}).View()

		for _, want := range []string{"SCRIPTED", "REPOST", "ARK", "No job has run yet"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in:\n%s", want, out)
			}
		}
	})

	t.Run("Watch Without Status", func(t *testing.T) {
		m := newTestModel(&fakeClient{})
		m.Update(keyRunes("w"))

		if !strings.Contains(m.View(), "Waiting for status") {
			t.Errorf("unexpected view:\n%s", m.View())
		}
	})

	t.Run("Failed Job", func(t *testing.T) {
		m := newTestModel(&fakeClient{})
		m.Update(statusFetchedMsg(&models.JobStatus{Target: "ARK", Progress: 100, Outcome: models.OutcomeFailed, Log: []string{"Error: quota"}}, nil))
		m.Update(keyRunes("w"))

		out := m.View()
		if !strings.Contains(out, "failed") || !strings.Contains(out, "Error: quota") {
			t.Errorf("unexpected view:\n%s", out)
		}
	})
}

func TestRejection(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{shared.ErrJobRunning, "A job is already running"},
		{shared.ErrInvalidTarget, "X is not a configured table"},
		{shared.ErrServiceUnavailable, "Server unreachable"},
		{errors.New("boom"), "Start failed: boom"},
	}

	for _, tt := range tests {
		if got := rejection("X", tt.err); got != tt.want {
			t.Errorf("rejection(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
