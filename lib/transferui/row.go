// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package transferui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/filament-archive/filament/lib/transfer"
)

// Column widths for the catalog table. The name column fills remaining
// space; all others are fixed.
const (
	columnWidthSize    = 10 // right-aligned humanized size (e.g. "123.4 MB")
	columnWidthExtents = 7  // right-aligned extent count
	columnWidthRecord  = 20 // decimal record id (a u64 is at most 20 digits)

	// columnGap separates adjacent columns.
	columnGap = 2
)

// CatalogRenderer handles the table-style rendering of catalog entries
// within a given width.
type CatalogRenderer struct {
	theme Theme
	width int
}

// NewCatalogRenderer creates a CatalogRenderer for the given width.
func NewCatalogRenderer(theme Theme, width int) CatalogRenderer {
	return CatalogRenderer{theme: theme, width: width}
}

// nameWidth returns the space left for the name column after the fixed
// columns and gaps are taken out.
func (renderer CatalogRenderer) nameWidth() int {
	width := renderer.width - 1 - // leading indent
		columnWidthSize - columnWidthExtents - columnWidthRecord -
		3*columnGap
	if width < 8 {
		width = 8
	}
	return width
}

// RenderCaptions renders the column caption row above the catalog.
func (renderer CatalogRenderer) RenderCaptions() string {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(renderer.theme.HeaderForeground)

	row := fmt.Sprintf(" %-*s  %*s  %*s  %-*s",
		renderer.nameWidth(), "NAME",
		columnWidthSize, "SIZE",
		columnWidthExtents, "EXTENTS",
		columnWidthRecord, "RECORD")

	return style.Width(renderer.width).MaxWidth(renderer.width).Render(row)
}

// RenderRow renders a single catalog entry as a formatted table row.
// The selected flag controls whether the row gets highlight styling.
//
// Row layout: indent + name + size + extent count + record id:
//
//	backup.tar.zst      1.2 GB      120  1451003468234958848
//	notes.txt            742 B        1  1451003470012341249
//
// The lister guarantees a name; size and extent count can still be
// absent on a record written by hand, and render as "?".
func (renderer CatalogRenderer) RenderRow(entry transfer.Entry, selected bool) string {
	name := ansi.Truncate(*entry.Record.Name, renderer.nameWidth(), "…")
	size := "?"
	if entry.Record.Size != nil {
		size = humanize.Bytes(*entry.Record.Size)
	}
	extents := "?"
	if entry.Record.Extents != nil {
		extents = strconv.FormatUint(*entry.Record.Extents, 10)
	}
	record := entry.ID.String()

	// Pad the name by visual width, not bytes: a truncated name ends
	// in a multi-byte ellipsis.
	namePadding := renderer.nameWidth() - ansi.StringWidth(name)
	if namePadding < 0 {
		namePadding = 0
	}

	if selected {
		rowStyle := lipgloss.NewStyle().
			Background(renderer.theme.SelectedBackground).
			Foreground(renderer.theme.SelectedForeground)
		row := fmt.Sprintf(" %s%*s  %*s  %*s  %-*s",
			name, namePadding, "",
			columnWidthSize, size,
			columnWidthExtents, extents,
			columnWidthRecord, record)
		return rowStyle.Width(renderer.width).MaxWidth(renderer.width).Render(row)
	}

	nameStyle := lipgloss.NewStyle().Foreground(renderer.theme.NormalText)
	faintStyle := lipgloss.NewStyle().Foreground(renderer.theme.FaintText)

	row := " " +
		nameStyle.Render(name) + fmt.Sprintf("%*s", namePadding, "") +
		faintStyle.Render(fmt.Sprintf("  %*s  %*s  ", columnWidthSize, size, columnWidthExtents, extents)) +
		nameStyle.Render(record)

	return lipgloss.NewStyle().Width(renderer.width).MaxWidth(renderer.width).Render(row)
}
