package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/gym2048/internal/engine"
)

// Command is what a key press asks the game model to do.
type Command int

const (
	CommandNone Command = iota
	CommandMove
	CommandReset
	CommandAutoplay
	CommandQuit
)

// KeyMap defines the key bindings of the game screen.
type KeyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Reset    key.Binding
	Autoplay key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Reset, k.Autoplay, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Reset, k.Autoplay, k.Quit},
	}
}

// DefaultKeyMap returns arrow/WASD movement plus vim keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "a", "h"),
			key.WithHelp("←/a", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d", "l"),
			key.WithHelp("→/d", "right"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "w", "k"),
			key.WithHelp("↑/w", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "s", "j"),
			key.WithHelp("↓/s", "down"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "new game"),
		),
		Autoplay: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "autoplay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Map translates a key message. The direction is only meaningful for
// CommandMove.
func (k KeyMap) Map(msg tea.KeyMsg) (Command, engine.Direction) {
	switch {
	case key.Matches(msg, k.Quit):
		return CommandQuit, 0
	case key.Matches(msg, k.Left):
		return CommandMove, engine.Left
	case key.Matches(msg, k.Right):
		return CommandMove, engine.Right
	case key.Matches(msg, k.Up):
		return CommandMove, engine.Up
	case key.Matches(msg, k.Down):
		return CommandMove, engine.Down
	case key.Matches(msg, k.Reset):
		return CommandReset, 0
	case key.Matches(msg, k.Autoplay):
		return CommandAutoplay, 0
	}
	return CommandNone, 0
}
