package tui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/evanschultz/todo/internal/app"
	"github.com/evanschultz/todo/internal/domain"
)

// focusArea identifies which part of the view receives key input.
type focusArea int

// focusInput and focusList enumerate focus targets.
const (
	focusInput focusArea = iota
	focusList
)

// inputMode identifies the active overlay.
type inputMode int

// modeNone and related constants enumerate overlays.
const (
	modeNone inputMode = iota
	modeTaskInfo
	modeConfirmRemove
)

// listTop is the first screen row used by task rows: title, blank, input, blank.
const listTop = 4

// footerLines reserves rows below the list for counts, status and help.
const footerLines = 5

// inputRow is the screen row holding the new-task input.
const inputRow = 2

// Model is the bubbletea model for the task list.
type Model struct {
	ctrl *app.Controller

	ready  bool
	width  int
	height int
	status string

	help  help.Model
	keys  keyMap
	input textinput.Model
	focus focusArea
	mode  inputMode

	selected        int
	offset          int
	infoTaskID      int64
	pendingRemoveID int64

	showCounts    bool
	confirmRemove bool
	placeholder   string
	doubleClick   time.Duration
	lastClickRow  int
	lastClickAt   time.Time
	clock         func() time.Time

	copyText func(string) error
	logger   Logger
	markdown *markdownRenderer
}

// NewModel constructs a model driving ctrl. The input starts focused.
func NewModel(ctrl *app.Controller, opts ...Option) Model {
	if ctrl == nil {
		ctrl = app.NewController(nil)
	}
	defaults := DefaultUIConfig()
	h := help.New()
	h.ShowAll = false
	input := textinput.New()
	input.Prompt = "+ "
	input.Placeholder = defaults.Placeholder
	input.CharLimit = defaults.CharLimit
	m := Model{
		ctrl:         ctrl,
		status:       "ready",
		help:         h,
		keys:         newKeyMap(),
		input:        input,
		focus:        focusInput,
		showCounts:   defaults.ShowCounts,
		placeholder:  defaults.Placeholder,
		doubleClick:  defaults.DoubleClick,
		lastClickRow: -1,
		clock:        time.Now,
		copyText:     clipboard.WriteAll,
		logger:       nopLogger{},
		markdown:     &markdownRenderer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.input.Focus()
	m.keys.inputFocused = true
	m.syncInput()
	return m
}

// Controller returns the controller the model drives.
func (m Model) Controller() *app.Controller {
	return m.ctrl
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update updates state for the received message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(max(10, m.width-8))
		m.clampSelection()
		return m, nil

	case tea.KeyPressMsg:
		switch m.mode {
		case modeTaskInfo:
			return m.handleTaskInfoKey(msg)
		case modeConfirmRemove:
			return m.handleConfirmRemoveKey(msg)
		}
		if m.focus == focusInput {
			return m.handleInputKey(msg)
		}
		return m.handleListKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseWheelMsg:
		if m.mode != modeNone || m.help.ShowAll {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseWheelUp:
			m.moveSelection(-1)
		case tea.MouseWheelDown:
			m.moveSelection(1)
		}
		return m, nil

	default:
		if m.focus == focusInput {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// handleInputKey handles keys while the shared input is focused.
func (m Model) handleInputKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.submit):
		state := m.ctrl.State()
		if state.Editing {
			m.saveEdit(state.EditingID)
			return m, m.focusListCmd()
		}
		m.addTask()
		return m, nil
	case key.Matches(msg, m.keys.cancel):
		if m.ctrl.State().Editing {
			id := m.ctrl.State().EditingID
			outcome := m.ctrl.CancelEdit()
			m.logTransition("cancel_edit", id, outcome)
			m.status = "edit cancelled"
			m.syncInput()
		}
		return m, m.focusListCmd()
	case key.Matches(msg, m.keys.focusList):
		// Leaving the input commits an edit in progress.
		if state := m.ctrl.State(); state.Editing {
			m.saveEdit(state.EditingID)
		}
		return m, m.focusListCmd()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != m.ctrl.State().DraftText {
		m.ctrl.SetDraftText(value)
	}
	return m, cmd
}

// handleListKey handles keys while the task list is focused.
func (m Model) handleListKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.moveSelection(-1)
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.moveSelection(1)
		return m, nil
	case key.Matches(msg, m.keys.focusInput):
		return m, m.focusInputCmd()
	}

	task, ok := m.selectedTask()
	if !ok {
		if key.Matches(msg, m.keys.toggle, m.keys.edit, m.keys.remove, m.keys.copyText, m.keys.taskInfo) {
			m.status = "no task selected"
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.toggle):
		m.toggleTask(task.ID)
		return m, nil
	case key.Matches(msg, m.keys.edit):
		outcome := m.ctrl.BeginEdit(task.ID)
		m.logTransition("begin_edit", task.ID, outcome)
		if !outcome.Applied() {
			m.status = "task not found"
			return m, nil
		}
		m.syncInput()
		m.status = "editing task"
		return m, m.focusInputCmd()
	case key.Matches(msg, m.keys.remove):
		if m.confirmRemove {
			m.mode = modeConfirmRemove
			m.pendingRemoveID = task.ID
			m.status = "confirm remove"
			return m, nil
		}
		m.removeTask(task.ID)
		return m, nil
	case key.Matches(msg, m.keys.copyText):
		if err := m.copyText(task.Text); err != nil {
			m.logger.Warn("clipboard write failed", "err", err)
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = "copied task text"
		return m, nil
	case key.Matches(msg, m.keys.taskInfo):
		m.mode = modeTaskInfo
		m.infoTaskID = task.ID
		m.status = "task info"
		return m, nil
	}
	return m, nil
}

// handleTaskInfoKey closes the task info overlay.
func (m Model) handleTaskInfoKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "enter", "q":
		m.mode = modeNone
		m.infoTaskID = 0
		m.status = "ready"
	}
	return m, nil
}

// handleConfirmRemoveKey resolves a pending removal.
func (m Model) handleConfirmRemoveKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "y", "enter":
		id := m.pendingRemoveID
		m.mode = modeNone
		m.pendingRemoveID = 0
		m.removeTask(id)
	case "n", "esc":
		m.mode = modeNone
		m.pendingRemoveID = 0
		m.status = "remove cancelled"
	}
	return m, nil
}

// handleMouseClick selects rows, toggles on double click and focuses the input.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.help.ShowAll || msg.Button != tea.MouseLeft {
		return m, nil
	}
	if msg.Y == inputRow && !m.ctrl.State().Editing {
		return m, m.focusInputCmd()
	}
	row := msg.Y - listTop
	tasks := m.ctrl.State().Tasks
	if row < 0 || row >= m.visibleRows() || m.offset+row >= len(tasks) {
		return m, nil
	}
	idx := m.offset + row
	task := tasks[idx]

	var cmd tea.Cmd
	if state := m.ctrl.State(); state.Editing {
		if state.EditingID == task.ID {
			return m, nil
		}
		m.saveEdit(state.EditingID)
		cmd = m.focusListCmd()
	} else if m.focus == focusInput {
		cmd = m.focusListCmd()
	}

	now := m.clock()
	double := m.lastClickRow == idx && now.Sub(m.lastClickAt) <= m.doubleClick
	m.selected = idx
	m.clampSelection()
	if double {
		m.lastClickRow = -1
		m.lastClickAt = time.Time{}
		m.toggleTask(task.ID)
		return m, cmd
	}
	m.lastClickRow = idx
	m.lastClickAt = now
	return m, cmd
}

// addTask appends the current draft as a new task.
func (m *Model) addTask() {
	m.ctrl.SetDraftText(m.input.Value())
	task, outcome := m.ctrl.AddTask()
	m.logTransition("add", task.ID, outcome)
	m.syncInput()
	if !outcome.Applied() {
		m.status = "nothing to add"
		return
	}
	m.selected = len(m.ctrl.State().Tasks) - 1
	m.clampSelection()
	m.status = "task added"
}

// saveEdit commits the input to the task under edit.
func (m *Model) saveEdit(id int64) {
	m.ctrl.SetDraftText(m.input.Value())
	outcome := m.ctrl.SaveEdit(id)
	m.logTransition("save_edit", id, outcome)
	m.syncInput()
	switch outcome {
	case app.OutcomeApplied:
		m.status = "task updated"
	case app.OutcomeEmptyText:
		m.status = "empty text, task unchanged"
	default:
		m.status = "edit not saved"
	}
}

// toggleTask flips completion of the task with id.
func (m *Model) toggleTask(id int64) {
	outcome := m.ctrl.ToggleComplete(id)
	m.logTransition("toggle", id, outcome)
	if !outcome.Applied() {
		m.status = "task not found"
		return
	}
	if task, ok := m.ctrl.State().Task(id); ok && task.Completed {
		m.status = "task done"
		return
	}
	m.status = "task reopened"
}

// removeTask removes the task with id and keeps the selection in range.
func (m *Model) removeTask(id int64) {
	outcome := m.ctrl.RemoveTask(id)
	m.logTransition("remove", id, outcome)
	m.syncInput()
	m.clampSelection()
	if !outcome.Applied() {
		m.status = "task not found"
		return
	}
	m.status = "task removed"
}

// focusInputCmd moves key focus to the shared input.
func (m *Model) focusInputCmd() tea.Cmd {
	m.focus = focusInput
	m.keys.inputFocused = true
	m.help.ShowAll = false
	return m.input.Focus()
}

// focusListCmd moves key focus to the task list.
func (m *Model) focusListCmd() tea.Cmd {
	m.focus = focusList
	m.keys.inputFocused = false
	m.input.Blur()
	return nil
}

// syncInput mirrors the controller draft into the input.
func (m *Model) syncInput() {
	state := m.ctrl.State()
	if state.Editing {
		m.input.Prompt = "› "
		m.input.Placeholder = "task text"
	} else {
		m.input.Prompt = "+ "
		m.input.Placeholder = m.placeholder
	}
	if m.input.Value() != state.DraftText {
		m.input.SetValue(state.DraftText)
	}
	m.input.CursorEnd()
}

// selectedTask returns the task under the list cursor.
func (m Model) selectedTask() (domain.Task, bool) {
	tasks := m.ctrl.State().Tasks
	if len(tasks) == 0 {
		return domain.Task{}, false
	}
	return tasks[clamp(m.selected, 0, len(tasks)-1)], true
}

// moveSelection moves the list cursor by delta rows.
func (m *Model) moveSelection(delta int) {
	m.selected += delta
	m.clampSelection()
}

// clampSelection keeps the cursor and scroll offset inside the list.
func (m *Model) clampSelection() {
	count := len(m.ctrl.State().Tasks)
	m.selected = clamp(m.selected, 0, count-1)
	rows := m.visibleRows()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+rows {
		m.offset = m.selected - rows + 1
	}
	m.offset = clamp(m.offset, 0, max(0, count-rows))
}

// visibleRows returns how many task rows fit on screen.
func (m Model) visibleRows() int {
	if m.height <= 0 {
		return 1 << 16
	}
	return max(1, m.height-listTop-footerLines)
}

// logTransition records one controller transition at debug level.
func (m Model) logTransition(op string, id int64, outcome app.Outcome) {
	m.logger.Debug("transition", "op", op, "id", id, "outcome", string(outcome))
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// render builds the full screen content.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Strikethrough(true)
	hintStyle := lipgloss.NewStyle().Foreground(muted).Italic(true)

	state := m.ctrl.State()
	sections := []string{titleStyle.Render("todo"), ""}
	if state.Editing {
		sections = append(sections, hintStyle.Render("  editing task below • enter save • esc cancel"))
	} else {
		sections = append(sections, m.input.View())
	}
	sections = append(sections, "")

	rows := m.visibleRows()
	end := min(len(state.Tasks), m.offset+rows)
	if len(state.Tasks) == 0 {
		sections = append(sections, hintStyle.Render("  no tasks yet"))
	}
	for idx := m.offset; idx < end; idx++ {
		task := state.Tasks[idx]
		if state.Editing && state.EditingID == task.ID {
			sections = append(sections, "  "+m.input.View())
			continue
		}
		cursor := "  "
		if m.focus == focusList && idx == m.selected {
			cursor = "› "
		}
		box := "[ ]"
		if task.Completed {
			box = "[x]"
		}
		text := truncate(task.Text, max(8, m.width-8))
		line := box + " " + text
		switch {
		case m.focus == focusList && idx == m.selected:
			line = selectedStyle.Render(line)
		case task.Completed:
			line = doneStyle.Render(line)
		}
		sections = append(sections, cursor+line)
	}
	content := strings.Join(sections, "\n")

	var footer []string
	if m.showCounts {
		counts := state.Counts()
		footer = append(footer, statusStyle.Render(fmt.Sprintf("%d tasks • %d done • %d left", counts.Total, counts.Completed, counts.Remaining)))
	}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		footer = append(footer, statusStyle.Render(m.status))
	}

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	bottom := helpLine
	if len(footer) > 0 {
		bottom = strings.Join(footer, "\n") + "\n" + helpLine
	}
	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(bottom)))
	}
	fullContent := content + "\n" + bottom

	if overlay := m.renderOverlay(accent, muted); overlay != "" {
		height := lipgloss.Height(fullContent)
		if m.height > 0 {
			height = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, height))
	}
	return fullContent
}

// renderOverlay renders the active overlay box, or "" when none is open.
func (m Model) renderOverlay(accent, muted color.Color) string {
	boxWidth := clamp(m.width-8, 24, 72)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(boxWidth)
	hint := lipgloss.NewStyle().Foreground(muted)

	switch m.mode {
	case modeTaskInfo:
		task, ok := m.ctrl.State().Task(m.infoTaskID)
		if !ok {
			return box.Render("task no longer exists\n\n" + hint.Render("esc close"))
		}
		body := m.markdown.render(taskDetailMarkdown(task), boxWidth-4)
		return box.Render(body + "\n\n" + hint.Render("esc close"))
	case modeConfirmRemove:
		task, ok := m.ctrl.State().Task(m.pendingRemoveID)
		label := "this task"
		if ok {
			label = fmt.Sprintf("%q", truncate(task.Text, boxWidth-16))
		}
		return box.Render("Remove " + label + "?\n\n" + hint.Render("y confirm • n cancel"))
	default:
		return ""
	}
}

// clamp bounds v to [minV, maxV], preferring minV when the range is empty.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines pads or truncates content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base on a width x height canvas.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}
	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(centered).X(0).Y(0).Z(10))
	return canvas.Render()
}

// truncate shortens s to limit runes with a trailing ellipsis.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	if limit <= 1 {
		return string(rs[:limit])
	}
	return string(rs[:limit-1]) + "…"
}
