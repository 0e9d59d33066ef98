package app

import (
	"slices"
	"strings"

	"github.com/evanschultz/todo/internal/domain"
)

// Outcome reports what a controller transition did.
type Outcome string

// OutcomeApplied and related constants enumerate transition results.
const (
	OutcomeApplied    Outcome = "applied"
	OutcomeEmptyText  Outcome = "empty_text"
	OutcomeNotFound   Outcome = "not_found"
	OutcomeIDMismatch Outcome = "id_mismatch"
	OutcomeIdle       Outcome = "idle"
)

// Applied reports whether the transition changed controller state.
func (o Outcome) Applied() bool {
	return o == OutcomeApplied
}

// Controller owns the task list, the shared draft text and the edit target.
//
// Every transition is synchronous and never fails: references to ids that are
// not in the list degrade to no-ops reported through Outcome. A Controller is
// not safe for concurrent use; callers serialize transitions.
type Controller struct {
	tasks     []domain.Task
	draft     string
	editingID int64
	editing   bool
	idGen     IDGenerator
}

// NewController constructs an empty controller. A nil idGen uses CounterIDs.
func NewController(idGen IDGenerator) *Controller {
	if idGen == nil {
		idGen = CounterIDs()
	}
	return &Controller{
		tasks: []domain.Task{},
		idGen: idGen,
	}
}

// SetDraftText replaces the draft verbatim.
func (c *Controller) SetDraftText(text string) Outcome {
	c.draft = text
	return OutcomeApplied
}

// AddTask appends a new open task built from the trimmed draft and clears the draft.
func (c *Controller) AddTask() (domain.Task, Outcome) {
	if strings.TrimSpace(c.draft) == "" {
		return domain.Task{}, OutcomeEmptyText
	}
	task, err := domain.NewTask(c.nextID(), c.draft)
	if err != nil {
		return domain.Task{}, OutcomeEmptyText
	}
	c.tasks = append(c.tasks, task)
	c.draft = ""
	return task, OutcomeApplied
}

// ToggleComplete flips the completed flag of the matching task.
func (c *Controller) ToggleComplete(id int64) Outcome {
	idx := c.indexOf(id)
	if idx < 0 {
		return OutcomeNotFound
	}
	c.tasks[idx].Toggle()
	return OutcomeApplied
}

// RemoveTask deletes the matching task. Removing the task under edit cancels editing.
func (c *Controller) RemoveTask(id int64) Outcome {
	idx := c.indexOf(id)
	if idx < 0 {
		return OutcomeNotFound
	}
	c.tasks = slices.Delete(c.tasks, idx, idx+1)
	if c.editing && c.editingID == id {
		c.clearEdit()
	}
	return OutcomeApplied
}

// BeginEdit targets the matching task and pre-populates the draft with its text.
func (c *Controller) BeginEdit(id int64) Outcome {
	idx := c.indexOf(id)
	if idx < 0 {
		return OutcomeNotFound
	}
	c.editing = true
	c.editingID = id
	c.draft = c.tasks[idx].Text
	return OutcomeApplied
}

// SaveEdit commits the draft to the task under edit and ends edit mode.
//
// The id must name the task currently under edit. A mismatched id, or a call
// while idle, is a no-op that leaves edit mode untouched. A blank draft ends
// edit mode without changing the task.
func (c *Controller) SaveEdit(id int64) Outcome {
	if !c.editing || c.editingID != id {
		return OutcomeIDMismatch
	}
	draft := c.draft
	c.clearEdit()

	idx := c.indexOf(id)
	if idx < 0 {
		return OutcomeNotFound
	}
	if strings.TrimSpace(draft) == "" {
		return OutcomeEmptyText
	}
	if err := c.tasks[idx].Rename(draft); err != nil {
		return OutcomeEmptyText
	}
	return OutcomeApplied
}

// CancelEdit leaves edit mode and clears the draft without touching any task.
func (c *Controller) CancelEdit() Outcome {
	if !c.editing {
		c.draft = ""
		return OutcomeIdle
	}
	c.clearEdit()
	return OutcomeApplied
}

// State returns a read-only copy of the controller state.
func (c *Controller) State() State {
	return State{
		Tasks:     slices.Clone(c.tasks),
		DraftText: c.draft,
		EditingID: c.editingID,
		Editing:   c.editing,
	}
}

// clearEdit resets the edit target and the shared draft.
func (c *Controller) clearEdit() {
	c.editing = false
	c.editingID = 0
	c.draft = ""
}

// indexOf returns the list index for id, or -1.
func (c *Controller) indexOf(id int64) int {
	return slices.IndexFunc(c.tasks, func(t domain.Task) bool {
		return t.ID == id
	})
}

// nextID draws from the generator and falls back past the current maximum
// when the generated id is unusable or already taken.
func (c *Controller) nextID() int64 {
	id := c.idGen()
	if id > 0 && c.indexOf(id) < 0 {
		return id
	}
	var maxID int64
	for _, t := range c.tasks {
		maxID = max(maxID, t.ID)
	}
	return maxID + 1
}
