package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap is the chat's event binding table, built once at startup.
type KeyMap struct {
	Send    key.Binding
	Newline key.Binding
	Clear   key.Binding
	Quit    key.Binding
	Yes     key.Binding
	No      key.Binding
	Dismiss key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter"),
			key.WithHelp("alt+enter", "newline"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "no"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "esc", " "),
			key.WithHelp("enter", "dismiss"),
		),
	}
}

// helpLine renders the idle key hints.
func (k KeyMap) helpLine() string {
	bindings := []key.Binding{k.Send, k.Newline, k.Clear, k.Quit}
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += " • "
		}
		h := b.Help()
		out += h.Key + " to " + h.Desc
	}
	return out
}
