// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette and visual properties for filament's
// terminal UIs. All colors use lipgloss ANSI 256-color codes for broad
// terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Accent marks the element that is doing something right now: the
	// focused scrollbar thumb, the phase label of a running transfer,
	// the pending-confirmation question.
	Accent lipgloss.Color

	// Status line colors for completed and failed operations.
	StatusInfo  lipgloss.Color
	StatusError lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed for
// 256-color terminals with a dark background (the common case for
// development environments and tmux sessions).
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	Accent: lipgloss.Color("220"), // yellow/amber

	StatusInfo:  lipgloss.Color("114"), // green
	StatusError: lipgloss.Color("196"), // red
}
