package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	toggle  key.Binding
	add     key.Binding
	all     key.Binding
	next    key.Binding
	prev    key.Binding
	enter   key.Binding
	back    key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add artist")),
		all:     key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select all")),
		next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new playlist")),
		quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.toggle, k.add},
		{k.next, k.prev, k.enter, k.back},
		{k.restart, k.quit},
	}
}
