package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap holds list-mode and input-mode bindings.
type keyMap struct {
	quit       key.Binding
	toggleHelp key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	toggle     key.Binding
	edit       key.Binding
	remove     key.Binding
	copyText   key.Binding
	taskInfo   key.Binding
	focusInput key.Binding
	focusList  key.Binding
	submit     key.Binding
	cancel     key.Binding

	// inputFocused switches help output to the input-mode bindings.
	inputFocused bool
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		toggle:     key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space/x", "toggle done")),
		edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		remove:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "end task")),
		copyText:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy text")),
		taskInfo:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "task info")),
		focusInput: key.NewBinding(key.WithKeys("a", "i", "tab"), key.WithHelp("a/tab", "new task")),
		focusList:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "list")),
		submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add/save")),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	if k.inputFocused {
		return []key.Binding{k.submit, k.cancel, k.focusList}
	}
	return []key.Binding{k.focusInput, k.toggle, k.edit, k.remove, k.toggleHelp, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	if k.inputFocused {
		return [][]key.Binding{{k.submit, k.cancel, k.focusList}}
	}
	return [][]key.Binding{
		{k.focusInput, k.taskInfo, k.toggleHelp, k.quit},
		{k.moveUp, k.moveDown},
		{k.toggle, k.edit, k.remove, k.copyText},
	}
}

// applyKeyConfig applies configured overrides to the list-mode bindings.
func (k *keyMap) applyKeyConfig(cfg KeyConfig) {
	configureBinding(&k.toggle, cfg.Toggle, "space", "toggle done")
	configureBinding(&k.edit, cfg.Edit, "e", "edit task")
	configureBinding(&k.remove, cfg.Remove, "d", "end task")
	configureBinding(&k.copyText, cfg.Copy, "y", "copy text")
}

// configureBinding replaces one binding's keys when an override is present.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys turns one configured key into matcher keys and a help label.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = fallback
	}
	if strings.EqualFold(value, "space") || value == " " {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + string(unicode.ToLower(r))}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}
