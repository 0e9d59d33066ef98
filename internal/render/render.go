// Package render formats controller state as plain terminal text.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/evanschultz/todo/internal/app"
)

// emptyList is printed in place of a table when there are no tasks.
const emptyList = "(no tasks)"

// Table renders the task list as a bordered id/done/text table followed by a counts line.
func Table(state app.State) string {
	if len(state.Tasks) == 0 {
		return emptyList
	}

	rows := make([][]string, 0, len(state.Tasks))
	for _, task := range state.Tasks {
		done := " "
		if task.Completed {
			done = "x"
		}
		text := task.Text
		if state.Editing && state.EditingID == task.ID {
			text += " (editing)"
		}
		rows = append(rows, []string{strconv.FormatInt(task.ID, 10), done, text})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DONE", "TASK").
		Rows(rows...)

	counts := state.Counts()
	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d tasks * %d done * %d left", counts.Total, counts.Completed, counts.Remaining))
	return b.String()
}
