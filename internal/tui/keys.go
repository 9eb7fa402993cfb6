package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Faster key.Binding
	Slower key.Binding
	Meter  key.Binding
	Louder key.Binding
	Softer key.Binding
	Toggle key.Binding
	Mute   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Faster: key.NewBinding(
			key.WithKeys("+", "=", "up", "k"),
			key.WithHelp("+/↑", "faster"),
		),
		Slower: key.NewBinding(
			key.WithKeys("-", "_", "down", "j"),
			key.WithHelp("-/↓", "slower"),
		),
		Meter: key.NewBinding(
			key.WithKeys("2", "3", "4", "6"),
			key.WithHelp("2/3/4/6", "meter"),
		),
		Louder: key.NewBinding(
			key.WithKeys("]", "right", "l"),
			key.WithHelp("]", "louder"),
		),
		Softer: key.NewBinding(
			key.WithKeys("[", "left", "h"),
			key.WithHelp("[", "softer"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "start/stop"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
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
	return []key.Binding{k.Toggle, k.Faster, k.Slower, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Faster, k.Slower, k.Meter},
		{k.Louder, k.Softer, k.Mute, k.Help, k.Quit},
	}
}
