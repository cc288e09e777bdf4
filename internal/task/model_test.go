package task

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUpdateRequestPatchSemantics(t *testing.T) {
	status := StatusDone
	b, err := json.Marshal(UpdateRequest{Status: &status})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"status":"done"}` {
		t.Fatalf("expected status-only body, got %s", b)
	}

	// Clearing a due date sends an explicit null; omitting it sends nothing.
	title := "Buy milk"
	var req UpdateRequest
	req.Title = &title
	req.SetDueDate(nil)
	b, err = json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, present := m["due_date"]; !present || v != nil {
		t.Fatalf("expected explicit null due_date, got %s", b)
	}

	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	req = UpdateRequest{}
	req.SetDueDate(&due)
	b, _ = json.Marshal(req)
	if string(b) != `{"due_date":"2026-09-01T00:00:00Z"}` {
		t.Fatalf("unexpected body %s", b)
	}
}

func TestCountStats(t *testing.T) {
	tasks := []Task{
		{ID: "1", Status: StatusPending},
		{ID: "2", Status: StatusPending},
		{ID: "3", Status: StatusInProgress},
		{ID: "4", Status: StatusDone},
	}

	s := CountStats(tasks)
	if s.Total != 4 || s.Pending != 2 || s.InProgress != 1 || s.Done != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if got := s.Percent(s.Pending); got != 50 {
		t.Fatalf("expected 50%%, got %d", got)
	}
}

func TestCountStatsEmpty(t *testing.T) {
	s := CountStats(nil)
	if s.Total != 0 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if got := s.Percent(s.Done); got != 0 {
		t.Fatalf("expected 0%% on empty list, got %d", got)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses() {
		if !s.Valid() {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	if Status("archived").Valid() {
		t.Fatalf("expected unknown status to be invalid")
	}
}
