package common

import (
	"sync"

	"github.com/evanschultz/todo/internal/app"
	"github.com/evanschultz/todo/internal/render"
)

// Session serializes remote transitions onto one controller.
type Session struct {
	mu     sync.Mutex
	ctrl   *app.Controller
	logger Logger
}

// NewSession wraps ctrl. A nil ctrl starts an empty counter-id controller.
func NewSession(ctrl *app.Controller, logger Logger) *Session {
	if ctrl == nil {
		ctrl = app.NewController(nil)
	}
	return &Session{ctrl: ctrl, logger: logger}
}

// State returns the current state.
func (s *Session) State() app.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.State()
}

// View renders the current state as a plain table.
func (s *Session) View() string {
	return render.Table(s.State())
}

// SetDraft replaces the draft text.
func (s *Session) SetDraft(text string) Result {
	return s.apply("set_draft", func(c *app.Controller) (int64, app.Outcome) {
		return 0, c.SetDraftText(text)
	})
}

// Add submits the draft as a new task.
func (s *Session) Add() Result {
	return s.apply("add", func(c *app.Controller) (int64, app.Outcome) {
		task, outcome := c.AddTask()
		return task.ID, outcome
	})
}

// AddText sets the draft and submits it in one serialized step.
func (s *Session) AddText(text string) Result {
	return s.apply("add_text", func(c *app.Controller) (int64, app.Outcome) {
		c.SetDraftText(text)
		task, outcome := c.AddTask()
		return task.ID, outcome
	})
}

// Toggle flips completion of id.
func (s *Session) Toggle(id int64) Result {
	return s.apply("toggle", func(c *app.Controller) (int64, app.Outcome) {
		return id, c.ToggleComplete(id)
	})
}

// Remove deletes id.
func (s *Session) Remove(id int64) Result {
	return s.apply("remove", func(c *app.Controller) (int64, app.Outcome) {
		return id, c.RemoveTask(id)
	})
}

// BeginEdit starts editing id.
func (s *Session) BeginEdit(id int64) Result {
	return s.apply("begin_edit", func(c *app.Controller) (int64, app.Outcome) {
		return id, c.BeginEdit(id)
	})
}

// SaveEdit commits the draft to id.
func (s *Session) SaveEdit(id int64) Result {
	return s.apply("save_edit", func(c *app.Controller) (int64, app.Outcome) {
		return id, c.SaveEdit(id)
	})
}

// CancelEdit discards the edit buffer.
func (s *Session) CancelEdit() Result {
	return s.apply("cancel_edit", func(c *app.Controller) (int64, app.Outcome) {
		return 0, c.CancelEdit()
	})
}

// apply runs fn under the session lock and snapshots the resulting state.
func (s *Session) apply(op string, fn func(*app.Controller) (int64, app.Outcome)) Result {
	s.mu.Lock()
	id, outcome := fn(s.ctrl)
	state := s.ctrl.State()
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("transition", "op", op, "id", id, "outcome", string(outcome))
	}
	return Result{Outcome: outcome, Applied: outcome.Applied(), State: state}
}
