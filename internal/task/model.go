package task

import (
	"encoding/json"
	"time"
)

// Status is a closed enum. Any status may follow any other; the backend
// enforces nothing beyond membership, and neither do we.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// Label is the human form rendered in views.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Statuses lists all values in display order, for select inputs.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusDone}
}

// Task mirrors the backend's task document. The backend assigns id,
// owner_id and timestamps; the client never fabricates them.
type Task struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	OwnerID     string     `json:"owner_id"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at,omitempty"`
}

type CreateRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateRequest carries PATCH semantics: nil fields are omitted from the
// request body and left untouched by the backend. The due date is special:
// an edit must be able to clear it, so SetDueDate(nil) sends an explicit
// null while an untouched field stays absent.
type UpdateRequest struct {
	Title       *string
	Description *string
	Status      *Status

	dueDate    *time.Time
	dueDateSet bool
}

func (r *UpdateRequest) SetDueDate(t *time.Time) {
	r.dueDate = t
	r.dueDateSet = true
}

func (r UpdateRequest) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 4)
	if r.Title != nil {
		m["title"] = *r.Title
	}
	if r.Description != nil {
		m["description"] = *r.Description
	}
	if r.Status != nil {
		m["status"] = *r.Status
	}
	if r.dueDateSet {
		m["due_date"] = r.dueDate
	}
	return json.Marshal(m)
}

// Stats summarizes a task list for the dashboard cards.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	Done       int
}

func CountStats(tasks []Task) Stats {
	var s Stats
	s.Total = len(tasks)
	for _, t := range tasks {
		switch t.Status {
		case StatusPending:
			s.Pending++
		case StatusInProgress:
			s.InProgress++
		case StatusDone:
			s.Done++
		}
	}
	return s
}

// Percent returns n as an integer percentage of the total, 0 when empty.
func (s Stats) Percent(n int) int {
	if s.Total == 0 {
		return 0
	}
	return n * 100 / s.Total
}
