package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/sheetstats/internal/shared"
	tu "github.com/desertthunder/sheetstats/internal/testing"
)

func TestNewScheduler(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "hourly", spec: "0 * * * *"},
		{name: "descriptor", spec: "@every 30m"},
		{name: "garbage", spec: "not a schedule", wantErr: true},
		{name: "six fields", spec: "0 0 * * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScheduler(tt.spec, newTestManager(newBlockingJob()), tu.NewTestLogger(nil))
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("NewScheduler() error = %v", err)
			}
		})
	}
}

func TestScheduler_Tick(t *testing.T) {
	t.Run("runs every target in order", func(t *testing.T) {
		table := &tu.MockTable{Columns: map[string][]string{
			"SCRIPTED": {"LINK", "s1"},
			"REPOST":   {"LINK", "r1", "r2"},
			"ARK":      {"LINK", "a1"},
		}}
		resolver := &tu.MockResolver{}
		m := newTestManager(newTestJob(table, resolver, 0))

		s, err := NewScheduler("@hourly", m, tu.NewTestLogger(nil))
		if err != nil {
			t.Fatalf("NewScheduler() error = %v", err)
		}
		s.Tick()

		calls := resolver.Calls()
		want := []string{"s1", "r1", "r2", "a1"}
		if len(calls) != len(want) {
			t.Fatalf("lookups = %v, want %v", calls, want)
		}
		for i := range want {
			if calls[i] != want[i] {
				t.Errorf("lookup %d = %q, want %q", i, calls[i], want[i])
			}
		}
		if got := len(table.Batches()); got != 3 {
			t.Errorf("expected 3 batches, got %d", got)
		}
		if m.Status().Target != "ARK" {
			t.Errorf("expected last target ARK, got %q", m.Status().Target)
		}
	})

	t.Run("continues after a failed target", func(t *testing.T) {
		table := &tu.MockTable{Columns: map[string][]string{
			"SCRIPTED": {"nope"},
			"REPOST":   {"LINK", "r1"},
			"ARK":      {"LINK", "a1"},
		}}
		m := newTestManager(newTestJob(table, &tu.MockResolver{}, 0))

		s, _ := NewScheduler("@hourly", m, tu.NewTestLogger(nil))
		s.Tick()

		if got := len(table.Batches()); got != 2 {
			t.Errorf("expected 2 batches, got %d", got)
		}
	})

	t.Run("skips while a job is in flight", func(t *testing.T) {
		job := newBlockingJob()
		m := newTestManager(job)
		if _, err := m.Start("ARK"); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		<-job.started

		s, _ := NewScheduler("@hourly", m, tu.NewTestLogger(nil))
		s.Tick()

		if len(job.started) != 0 {
			t.Error("tick should not start a job while one is running")
		}
		close(job.release)
		m.Wait()
	})
}

func TestScheduler_Run(t *testing.T) {
	m := newTestManager(newBlockingJob())
	s, err := NewScheduler("@hourly", m, tu.NewTestLogger(nil))
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
