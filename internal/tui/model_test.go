package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/evanschultz/todo/internal/app"
)

// fakeClipboard records copied text.
type fakeClipboard struct {
	copied []string
	err    error
}

func (f *fakeClipboard) write(text string) error {
	if f.err != nil {
		return f.err
	}
	f.copied = append(f.copied, text)
	return nil
}

// recordingLogger captures debug transition messages.
type recordingLogger struct {
	debug []string
	warn  []string
}

func (r *recordingLogger) Debug(msg any, keyvals ...any) {
	r.debug = append(r.debug, formatLog(msg, keyvals))
}

func (r *recordingLogger) Info(any, ...any) {}

func (r *recordingLogger) Warn(msg any, keyvals ...any) {
	r.warn = append(r.warn, formatLog(msg, keyvals))
}

func formatLog(msg any, keyvals []any) string {
	parts := []string{fmt.Sprint(msg)}
	for _, kv := range keyvals {
		parts = append(parts, fmt.Sprint(kv))
	}
	return strings.Join(parts, " ")
}

// loadReadyModel sizes the model so View renders the list.
func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

// applyMsg applies one message and discards returned commands.
func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	out, _ := updateModel(t, m, msg)
	return out
}

// updateModel applies one message and returns the command for inspection.
func updateModel(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected tui.Model, got %T", updated)
	}
	return out, cmd
}

// typeText sends one key press per rune.
func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = applyMsg(t, m, keyRune(r))
	}
	return m
}

// viewText renders the model without ANSI styling.
func viewText(m Model) string {
	return ansi.Strip(m.render())
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func keyCode(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

// seededModel builds a ready model whose list already holds texts, with the list focused.
func seededModel(t *testing.T, texts []string, opts ...Option) Model {
	t.Helper()
	m := loadReadyModel(t, NewModel(app.NewController(nil), opts...))
	for _, text := range texts {
		m = typeText(t, m, text)
		m = applyMsg(t, m, keyCode(tea.KeyEnter))
	}
	return applyMsg(t, m, keyCode(tea.KeyTab))
}

// TestModelAddTaskFromInput verifies typing and enter append a task and clear the input.
func TestModelAddTaskFromInput(t *testing.T) {
	m := loadReadyModel(t, NewModel(app.NewController(nil)))
	m = typeText(t, m, "Buy milk")
	if got := m.Controller().State().DraftText; got != "Buy milk" {
		t.Fatalf("expected draft mirrored into controller, got %q", got)
	}
	m = applyMsg(t, m, keyCode(tea.KeyEnter))

	state := m.Controller().State()
	if len(state.Tasks) != 1 || state.Tasks[0].Text != "Buy milk" {
		t.Fatalf("unexpected tasks %#v", state.Tasks)
	}
	if state.DraftText != "" || m.input.Value() != "" {
		t.Fatalf("expected cleared draft, got controller %q input %q", state.DraftText, m.input.Value())
	}
	if m.status != "task added" {
		t.Fatalf("unexpected status %q", m.status)
	}
	if m.focus != focusInput {
		t.Fatal("expected input to keep focus after add")
	}
}

// TestModelBlankAddIsNoop verifies whitespace input does not create tasks.
func TestModelBlankAddIsNoop(t *testing.T) {
	m := loadReadyModel(t, NewModel(app.NewController(nil)))
	m = typeText(t, m, "   ")
	m = applyMsg(t, m, keyCode(tea.KeyEnter))
	if got := len(m.Controller().State().Tasks); got != 0 {
		t.Fatalf("expected no tasks, got %d", got)
	}
	if m.status != "nothing to add" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

// TestModelToggleSelectedTask verifies space and x toggle the selected row.
func TestModelToggleSelectedTask(t *testing.T) {
	m := seededModel(t, []string{"A", "B"})
	if m.focus != focusList {
		t.Fatal("expected tab to focus the list")
	}
	m = applyMsg(t, m, keyRune('k'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})

	state := m.Controller().State()
	if state.Tasks[0].Completed || !state.Tasks[1].Completed {
		t.Fatalf("expected only B completed, got %#v", state.Tasks)
	}
	m = applyMsg(t, m, keyRune('x'))
	if m.Controller().State().Tasks[1].Completed {
		t.Fatal("expected x to reopen B")
	}
}

// TestModelEditSave verifies e begins an edit and enter commits it.
func TestModelEditSave(t *testing.T) {
	m := seededModel(t, []string{"A", "B"})
	m = applyMsg(t, m, keyRune('k'))
	m = applyMsg(t, m, keyRune('e'))
	state := m.Controller().State()
	if !state.Editing || state.EditingID != state.Tasks[0].ID {
		t.Fatalf("expected editing first task, got %#v", state)
	}
	if m.input.Value() != "A" || m.focus != focusInput {
		t.Fatalf("expected input focused with task text, got %q", m.input.Value())
	}

	m = applyMsg(t, m, keyCode(tea.KeyBackspace))
	m = typeText(t, m, "Apples")
	m = applyMsg(t, m, keyCode(tea.KeyEnter))

	state = m.Controller().State()
	if state.Editing || state.DraftText != "" {
		t.Fatalf("expected idle after save, got %#v", state)
	}
	if state.Tasks[0].Text != "Apples" || state.Tasks[1].Text != "B" {
		t.Fatalf("unexpected tasks %#v", state.Tasks)
	}
	if m.focus != focusList || m.status != "task updated" {
		t.Fatalf("expected list focus and updated status, got focus %v status %q", m.focus, m.status)
	}
}

// TestModelEditCancel verifies esc discards the edit buffer.
func TestModelEditCancel(t *testing.T) {
	m := seededModel(t, []string{"A"})
	m = applyMsg(t, m, keyRune('e'))
	m = typeText(t, m, "zzz")
	m = applyMsg(t, m, keyCode(tea.KeyEscape))

	state := m.Controller().State()
	if state.Editing || state.DraftText != "" || state.Tasks[0].Text != "A" {
		t.Fatalf("expected cancelled edit, got %#v", state)
	}
	if m.status != "edit cancelled" || m.focus != focusList {
		t.Fatalf("unexpected status %q focus %v", m.status, m.focus)
	}
}

// TestModelTabCommitsEdit verifies leaving the input saves the edit.
func TestModelTabCommitsEdit(t *testing.T) {
	m := seededModel(t, []string{"A"})
	m = applyMsg(t, m, keyRune('e'))
	m = typeText(t, m, "!")
	m = applyMsg(t, m, keyCode(tea.KeyTab))

	state := m.Controller().State()
	if state.Editing || state.Tasks[0].Text != "A!" {
		t.Fatalf("expected committed edit, got %#v", state)
	}
}

// TestModelEmptyEditKeepsText verifies a cleared buffer leaves the task unchanged.
func TestModelEmptyEditKeepsText(t *testing.T) {
	m := seededModel(t, []string{"A"})
	m = applyMsg(t, m, keyRune('e'))
	m = applyMsg(t, m, keyCode(tea.KeyBackspace))
	m = applyMsg(t, m, keyCode(tea.KeyEnter))

	state := m.Controller().State()
	if state.Editing || state.Tasks[0].Text != "A" {
		t.Fatalf("expected unchanged task after empty save, got %#v", state)
	}
	if m.status != "empty text, task unchanged" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

// TestModelRemoveTask verifies d removes the selection and clamps the cursor.
func TestModelRemoveTask(t *testing.T) {
	m := seededModel(t, []string{"A", "B", "C"})
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('d'))

	state := m.Controller().State()
	if len(state.Tasks) != 2 || state.Tasks[0].Text != "A" || state.Tasks[1].Text != "B" {
		t.Fatalf("unexpected tasks %#v", state.Tasks)
	}
	if m.selected != 1 {
		t.Fatalf("expected selection clamped to 1, got %d", m.selected)
	}
}

// TestModelConfirmRemove verifies the confirm overlay gates removal.
func TestModelConfirmRemove(t *testing.T) {
	ui := DefaultUIConfig()
	ui.ConfirmRemove = true
	m := seededModel(t, []string{"A"}, WithUIConfig(ui))

	m = applyMsg(t, m, keyRune('d'))
	if m.mode != modeConfirmRemove {
		t.Fatalf("expected confirm mode, got %v", m.mode)
	}
	if !strings.Contains(viewText(m), "Remove") {
		t.Fatal("expected confirm overlay in view")
	}
	m = applyMsg(t, m, keyRune('n'))
	if got := len(m.Controller().State().Tasks); got != 1 {
		t.Fatalf("expected task kept after cancel, got %d tasks", got)
	}

	m = applyMsg(t, m, keyRune('d'))
	m = applyMsg(t, m, keyRune('y'))
	if got := len(m.Controller().State().Tasks); got != 0 {
		t.Fatalf("expected task removed after confirm, got %d tasks", got)
	}
	if m.mode != modeNone {
		t.Fatalf("expected overlay closed, got %v", m.mode)
	}
}

// TestModelCopyTaskText verifies y writes task text to the clipboard.
func TestModelCopyTaskText(t *testing.T) {
	clip := &fakeClipboard{}
	m := seededModel(t, []string{"Call mom"}, WithClipboard(clip.write))
	m = applyMsg(t, m, keyRune('y'))
	if len(clip.copied) != 1 || clip.copied[0] != "Call mom" {
		t.Fatalf("unexpected clipboard writes %#v", clip.copied)
	}

	clip.err = errors.New("no display")
	logger := &recordingLogger{}
	m.logger = logger
	m = applyMsg(t, m, keyRune('y'))
	if m.status != "copy failed: no display" {
		t.Fatalf("unexpected status %q", m.status)
	}
	if len(logger.warn) != 1 {
		t.Fatalf("expected one warning, got %#v", logger.warn)
	}
}

// TestModelDoubleClickToggles verifies a double click toggles and a single click selects.
func TestModelDoubleClickToggles(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := seededModel(t, []string{"A", "B"}, WithClock(clock))
	click := tea.MouseClickMsg{X: 4, Y: listTop + 1, Button: tea.MouseLeft}

	m = applyMsg(t, m, click)
	if m.selected != 1 {
		t.Fatalf("expected click to select row 1, got %d", m.selected)
	}
	if m.Controller().State().Tasks[1].Completed {
		t.Fatal("single click should not toggle")
	}

	now = now.Add(100 * time.Millisecond)
	m = applyMsg(t, m, click)
	if !m.Controller().State().Tasks[1].Completed {
		t.Fatal("expected double click to toggle")
	}

	now = now.Add(time.Second)
	m = applyMsg(t, m, click)
	now = now.Add(time.Second)
	m = applyMsg(t, m, click)
	if !m.Controller().State().Tasks[1].Completed {
		t.Fatal("slow clicks should not toggle")
	}
}

// TestModelTaskInfoOverlay verifies enter opens task details and esc closes them.
func TestModelTaskInfoOverlay(t *testing.T) {
	m := seededModel(t, []string{"Read *docs*"})
	m = applyMsg(t, m, keyCode(tea.KeyEnter))
	if m.mode != modeTaskInfo {
		t.Fatalf("expected task info mode, got %v", m.mode)
	}
	if !strings.Contains(viewText(m), "Task 1") {
		t.Fatal("expected task heading in overlay")
	}
	m = applyMsg(t, m, keyCode(tea.KeyEscape))
	if m.mode != modeNone {
		t.Fatalf("expected overlay closed, got %v", m.mode)
	}
}

// TestModelViewShowsRowsAndCounts verifies the rendered list and counts line.
func TestModelViewShowsRowsAndCounts(t *testing.T) {
	m := seededModel(t, []string{"A", "B"})
	m = applyMsg(t, m, keyRune('x'))
	view := viewText(m)
	for _, want := range []string{"todo", "[ ] A", "› [x] B", "2 tasks • 1 done • 1 left"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}

	ui := DefaultUIConfig()
	ui.ShowCounts = false
	quiet := seededModel(t, []string{"A"}, WithUIConfig(ui))
	if strings.Contains(viewText(quiet), "1 tasks") {
		t.Fatal("expected counts hidden")
	}
}

// TestModelViewEnablesMouse verifies the view opts into cell-motion mouse events.
func TestModelViewEnablesMouse(t *testing.T) {
	v := NewModel(app.NewController(nil)).View()
	if v.Content == nil || v.MouseMode != tea.MouseModeCellMotion || !v.AltScreen {
		t.Fatal("expected loading view with mouse and alt screen enabled")
	}
}

// TestModelQuitKeys verifies q quits from the list and only ctrl+c quits from the input.
func TestModelQuitKeys(t *testing.T) {
	m := loadReadyModel(t, NewModel(app.NewController(nil)))
	m, cmd := updateModel(t, m, keyRune('q'))
	if isQuit(cmd) {
		t.Fatal("q should type into the focused input")
	}
	if m.input.Value() != "q" {
		t.Fatalf("expected q typed, got %q", m.input.Value())
	}
	_, cmd = updateModel(t, m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if !isQuit(cmd) {
		t.Fatal("expected ctrl+c to quit")
	}

	list := seededModel(t, nil)
	_, cmd = updateModel(t, list, keyRune('q'))
	if !isQuit(cmd) {
		t.Fatal("expected q to quit from the list")
	}
}

// TestModelKeyConfigOverrides verifies configured bindings replace defaults.
func TestModelKeyConfigOverrides(t *testing.T) {
	m := seededModel(t, []string{"A"}, WithKeyConfig(KeyConfig{Toggle: "t", Remove: "r"}))
	m = applyMsg(t, m, keyRune('x'))
	if m.Controller().State().Tasks[0].Completed {
		t.Fatal("old toggle key should be unbound")
	}
	m = applyMsg(t, m, keyRune('t'))
	if !m.Controller().State().Tasks[0].Completed {
		t.Fatal("expected t to toggle")
	}
	m = applyMsg(t, m, keyRune('r'))
	if got := len(m.Controller().State().Tasks); got != 0 {
		t.Fatalf("expected r to remove, got %d tasks", got)
	}
}

// TestModelLogsTransitions verifies transitions are reported at debug level.
func TestModelLogsTransitions(t *testing.T) {
	logger := &recordingLogger{}
	m := seededModel(t, []string{"A"}, WithLogger(logger))
	_ = applyMsg(t, m, keyRune('x'))
	joined := strings.Join(logger.debug, "\n")
	for _, want := range []string{"op add", "op toggle", "outcome applied"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in debug log:\n%s", want, joined)
		}
	}
}
