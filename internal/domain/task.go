package domain

import "strings"

// Task is one entry in the todo list.
type Task struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// NewTask constructs an open task from raw input text.
func NewTask(id int64, text string) (Task, error) {
	if id <= 0 {
		return Task{}, ErrInvalidID
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, ErrInvalidText
	}
	return Task{
		ID:   id,
		Text: text,
	}, nil
}

// Rename replaces the task text with the trimmed input.
func (t *Task) Rename(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrInvalidText
	}
	t.Text = text
	return nil
}

// Toggle flips the completed flag.
func (t *Task) Toggle() {
	t.Completed = !t.Completed
}
