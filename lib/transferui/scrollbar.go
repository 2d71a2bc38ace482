// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package transferui

import "github.com/filament-archive/filament/lib/tui"

// renderScrollbar delegates to the shared TUI library's scrollbar
// renderer.
func renderScrollbar(theme Theme, height, totalItems, visibleItems, scrollOffset int) string {
	return tui.RenderScrollbar(theme, height, totalItems, visibleItems, scrollOffset, true)
}
