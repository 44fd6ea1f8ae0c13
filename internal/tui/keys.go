package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Answer  key.Binding
	Toggle  key.Binding
	Restart key.Binding
	NewGame key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Answer: key.NewBinding(
			key.WithKeys("a", "b", "c", "d", "1", "2", "3", "4"),
			key.WithHelp("a-d", "answer"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "play/pause"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart clip"),
		),
		NewGame: key.NewBinding(
			key.WithKeys("n", "enter"),
			key.WithHelp("n", "new game"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Answer, k.Toggle, k.Restart, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Answer, k.NewGame},
		{k.Toggle, k.Restart},
		{k.Help, k.Quit},
	}
}
