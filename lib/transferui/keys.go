// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package transferui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the catalog browser TUI. The
// bindings apply while browsing; the upload prompt and the delete
// confirmation route keys themselves.
type KeyMap struct {
	// Catalog navigation.
	Up   key.Binding
	Down key.Binding
	Home key.Binding
	End  key.Binding

	// Catalog reload.
	Refresh key.Binding

	// Transfers.
	Upload   key.Binding
	Download key.Binding
	Delete   key.Binding

	// Confirmation (active while a delete awaits y/n).
	Confirm key.Binding
	Cancel  key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Upload: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "upload"),
	),
	Download: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "download"),
	),
	Delete: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "delete"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
