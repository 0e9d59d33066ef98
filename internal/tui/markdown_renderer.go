package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/evanschultz/todo/internal/domain"
)

// minDetailWrap is the narrowest wrap width used for task details.
const minDetailWrap = 24

// markdownRenderer renders task details and rebuilds its glamour renderer when the wrap width changes.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// taskDetailMarkdown builds the markdown document shown in the task info overlay.
func taskDetailMarkdown(task domain.Task) string {
	status := "open"
	if task.Completed {
		status = "done"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## Task %d\n\n", task.ID)
	b.WriteString(task.Text)
	fmt.Fprintf(&b, "\n\n*status:* **%s**\n", status)
	return b.String()
}

// render converts markdown into ANSI-styled text, falling back to the raw input on renderer errors.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	wrapWidth := max(width, minDetailWrap)
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}
	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(rendered, "\n")
}
