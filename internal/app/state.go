package app

import "github.com/evanschultz/todo/internal/domain"

// State is the read view handed to presentation layers.
type State struct {
	Tasks     []domain.Task `json:"tasks"`
	DraftText string        `json:"draft_text"`
	EditingID int64         `json:"editing_id,omitempty"`
	Editing   bool          `json:"editing"`
}

// Counts summarizes list progress.
type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Remaining int `json:"remaining"`
}

// EditingTask returns the task under edit, if any.
func (s State) EditingTask() (domain.Task, bool) {
	if !s.Editing {
		return domain.Task{}, false
	}
	return s.Task(s.EditingID)
}

// Task looks up one task by id.
func (s State) Task(id int64) (domain.Task, bool) {
	for _, task := range s.Tasks {
		if task.ID == id {
			return task, true
		}
	}
	return domain.Task{}, false
}

// Counts returns completed/remaining totals.
func (s State) Counts() Counts {
	out := Counts{Total: len(s.Tasks)}
	for _, task := range s.Tasks {
		if task.Completed {
			out.Completed++
		}
	}
	out.Remaining = out.Total - out.Completed
	return out
}
