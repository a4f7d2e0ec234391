package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap contains the key bindings of the confirmation prompt.
type KeyMap struct {
	Left     key.Binding
	Right    key.Binding
	VimLeft  key.Binding
	VimRight key.Binding
	Toggle   key.Binding

	Select key.Binding
	Accept key.Binding
	Reject key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "yes"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "no"),
		),
		VimLeft: key.NewBinding(
			key.WithKeys("h"),
		),
		VimRight: key.NewBinding(
			key.WithKeys("l"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Accept: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		Reject: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n", "no"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}
