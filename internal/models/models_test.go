package models

import (
	"testing"
	"time"
)

func TestStatsResult(t *testing.T) {
	t.Run("Cells Of Available Result", func(t *testing.T) {
		cells := NewStatsResult(100, 2, 3, 40).Cells()
		want := []any{int64(100), int64(2), int64(3), int64(40)}
		for i := range want {
			if cells[i] != want[i] {
				t.Errorf("cell %d = %v, want %v", i, cells[i], want[i])
			}
		}
	})

	t.Run("Cells Of Unavailable Result", func(t *testing.T) {
		cells := Unavailable().Cells()
		if len(cells) != OutputColumns {
			t.Fatalf("expected %d cells, got %d", OutputColumns, len(cells))
		}
		for i, c := range cells {
			if c != ErrorCell {
				t.Errorf("cell %d = %v, want %s", i, c, ErrorCell)
			}
		}
	})
}

func TestJobStatusClone(t *testing.T) {
	now := time.Now()
	s := JobStatus{Log: []string{"a"}, StartedAt: &now}

	c := s.Clone()
	c.Log[0] = "changed"
	*c.StartedAt = now.Add(time.Hour)

	if s.Log[0] != "a" {
		t.Error("clone shares log backing array")
	}
	if !s.StartedAt.Equal(now) {
		t.Error("clone shares started_at pointer")
	}

	if empty := (JobStatus{}).Clone(); empty.Log == nil {
		t.Error("clone should never return a nil log")
	}
}
