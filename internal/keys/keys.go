// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the board.
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Gesture
	Grab   key.Binding
	Drop   key.Binding
	Spill  key.Binding
	Cancel key.Binding

	// Actions
	Inspect key.Binding
	Verify  key.Binding
	Reload  key.Binding

	// General
	Help         key.Binding
	Quit         key.Binding
	ToggleStatus key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "move left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "move right"),
		),

		// Gesture
		Grab: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "grab item"),
		),
		Drop: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space/enter", "drop"),
		),
		Spill: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "drop outside"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel drag"),
		),

		// Actions
		Inspect: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "inspect item"),
		),
		Verify: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "verify order"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload items"),
		),

		// General
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ToggleStatus: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "toggle status bar"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Grab, k.Cancel, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},     // Navigation
		{k.Grab, k.Drop, k.Spill, k.Cancel}, // Gesture
		{k.Inspect, k.Verify, k.Reload},     // Actions
		{k.Help, k.ToggleStatus, k.Quit},    // General
	}
}

// Dragging narrows the map to what applies while an item is held.
func (k KeyMap) Dragging() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Drop, k.Spill, k.Cancel}
}
