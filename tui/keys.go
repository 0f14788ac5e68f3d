package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Toggle key.Binding
	Panic  key.Binding
	Resync key.Binding
	Input  key.Binding
	Output key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "decrease")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "increase")),
		Toggle: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
		Panic:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "release all keys")),
		Resync: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resync transpose")),
		Input:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "input strip")),
		Output: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "output strip")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Panic, k.Resync, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Toggle, k.Panic, k.Resync},
		{k.Input, k.Output, k.Quit},
	}
}
