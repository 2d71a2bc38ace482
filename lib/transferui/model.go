// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package transferui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/filament-archive/filament/lib/transfer"
)

// mode identifies where keyboard input routes.
type mode int

const (
	// modeBrowse means navigation keys move the catalog cursor.
	modeBrowse mode = iota
	// modePrompt means keystrokes go to the upload path input.
	modePrompt
	// modeConfirm means a delete awaits y/n confirmation.
	modeConfirm
)

// Transfer verbs named in status messages.
const (
	verbUpload   = "upload"
	verbDownload = "download"
	verbDelete   = "delete"
)

// phaseLabelWidth fixes the phase label column so the progress bar
// doesn't shift when the phase changes ("disassembling" is the
// longest label).
const phaseLabelWidth = 14

// catalogMsg delivers the result of a catalog load.
type catalogMsg struct {
	entries []transfer.Entry
	err     error
}

// progressMsg wraps one transfer progress event for delivery through
// the bubbletea message loop.
type progressMsg struct {
	event transfer.Progress
}

// transferDoneMsg is sent when the background transfer goroutine
// finishes. detail carries a human summary on success; err is set on
// failure.
type transferDoneMsg struct {
	verb   string
	detail string
	err    error
}

// Model is the top-level bubbletea model for the catalog browser TUI.
type Model struct {
	client *transfer.Client
	theme  Theme
	keys   KeyMap

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	// Catalog state.
	entries      []transfer.Entry
	cursor       int
	scrollOffset int
	loading      bool
	spinner      spinner.Model

	// Input routing.
	mode mode

	// Upload path prompt (modePrompt).
	pathInput textinput.Model

	// Delete confirmation (modeConfirm). pendingDelete is the entry
	// captured when the delete key was pressed, so a catalog refresh
	// landing mid-confirmation cannot redirect the delete.
	pendingDelete transfer.Entry

	// Active transfer. At most one runs at a time; the events channel
	// is read by the re-armed listen command until the operation
	// closes it.
	transferring bool
	phase        string
	fraction     float64
	progressBar  progress.Model
	events       <-chan transfer.Progress

	// Status line: the last completed operation or error.
	status      string
	statusError bool
}

// NewModel creates a Model that browses the container behind client.
// The catalog loads on Init.
func NewModel(client *transfer.Client) Model {
	loadSpinner := spinner.New()
	loadSpinner.Spinner = spinner.Dot
	loadSpinner.Style = lipgloss.NewStyle().Foreground(DefaultTheme.Accent)

	pathInput := textinput.New()
	pathInput.Prompt = "upload: "
	pathInput.Placeholder = "path to a local file"

	return Model{
		client:      client,
		theme:       DefaultTheme,
		keys:        DefaultKeyMap,
		loading:     true,
		spinner:     loadSpinner,
		pathInput:   pathInput,
		progressBar: progress.New(progress.WithDefaultGradient()),
	}
}

// Init implements tea.Model. Starts the first catalog load.
func (model Model) Init() tea.Cmd {
	return tea.Batch(model.spinner.Tick, model.loadCatalog())
}

// loadCatalog returns a command that fetches the catalog.
func (model Model) loadCatalog() tea.Cmd {
	client := model.client
	return func() tea.Msg {
		entries, err := client.List(context.Background())
		return catalogMsg{entries: entries, err: err}
	}
}

// listenForProgress returns a tea.Cmd that blocks until an event
// arrives on the transfer's progress channel, then delivers it as a
// progressMsg. Update re-arms it after each message; when the
// operation closes the channel the command resolves to no message and
// the loop ends.
func listenForProgress(events <-chan transfer.Progress) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return progressMsg{event: event}
	}
}

// Update implements tea.Model. Routes keyboard events based on the
// current mode and applies catalog, progress, and completion messages.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch model.mode {
		case modePrompt:
			return model.handlePromptKeys(message)
		case modeConfirm:
			return model.handleConfirmKeys(message)
		}
		return model.handleBrowseKeys(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.progressBar.Width = progressBarWidth(message.Width)
		inputWidth := message.Width - 14
		if inputWidth < 10 {
			inputWidth = 10
		}
		model.pathInput.Width = inputWidth
		model.ensureCursorVisible()

	case catalogMsg:
		model.loading = false
		if message.err != nil {
			model.status = fmt.Sprintf("loading catalog: %v", message.err)
			model.statusError = true
			return model, nil
		}
		model.entries = message.entries
		model.clampCursor()

	case progressMsg:
		if !model.transferring {
			return model, nil
		}
		model.phase = message.event.Label
		model.fraction = message.event.Fraction
		return model, listenForProgress(model.events)

	case transferDoneMsg:
		model.transferring = false
		model.events = nil
		model.phase = ""
		model.fraction = 0
		if message.err != nil {
			model.status = fmt.Sprintf("%s failed: %v", message.verb, message.err)
			model.statusError = true
			return model, nil
		}
		model.status = message.detail
		model.statusError = false
		// Uploads and deletes change the catalog; reload it. Downloads
		// leave the container untouched.
		if message.verb == verbDownload {
			return model, nil
		}
		return model, model.refresh()

	case spinner.TickMsg:
		if !model.loading {
			return model, nil
		}
		var command tea.Cmd
		model.spinner, command = model.spinner.Update(message)
		return model, command
	}
	return model, nil
}

// handleBrowseKeys handles keys while the catalog has input focus.
func (model Model) handleBrowseKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		model.moveCursor(-1)

	case key.Matches(message, model.keys.Down):
		model.moveCursor(1)

	case key.Matches(message, model.keys.Home):
		model.cursor = 0
		model.ensureCursorVisible()

	case key.Matches(message, model.keys.End):
		model.cursor = len(model.entries) - 1
		if model.cursor < 0 {
			model.cursor = 0
		}
		model.ensureCursorVisible()

	case key.Matches(message, model.keys.Refresh):
		if model.loading {
			return model, nil
		}
		return model, model.refresh()

	case key.Matches(message, model.keys.Upload):
		if model.transferring {
			return model.rejectBusy()
		}
		model.mode = modePrompt
		model.pathInput.SetValue("")
		return model, model.pathInput.Focus()

	case key.Matches(message, model.keys.Download):
		if model.transferring {
			return model.rejectBusy()
		}
		entry, ok := model.selected()
		if !ok {
			return model, nil
		}
		return model, model.startDownload(entry)

	case key.Matches(message, model.keys.Delete):
		if model.transferring {
			return model.rejectBusy()
		}
		entry, ok := model.selected()
		if !ok {
			return model, nil
		}
		model.mode = modeConfirm
		model.pendingDelete = entry

	case key.Matches(message, model.keys.Cancel):
		// Esc with nothing pending clears the status line.
		model.status = ""
		model.statusError = false
	}
	return model, nil
}

// handlePromptKeys routes keys while the upload path prompt is active.
// Enter submits, escape cancels, everything else edits the input.
func (model Model) handlePromptKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit

	case tea.KeyEscape:
		model.mode = modeBrowse
		model.pathInput.Blur()
		return model, nil

	case tea.KeyEnter:
		path := strings.TrimSpace(model.pathInput.Value())
		model.mode = modeBrowse
		model.pathInput.Blur()
		if path == "" {
			return model, nil
		}
		return model, model.startUpload(path)
	}

	var command tea.Cmd
	model.pathInput, command = model.pathInput.Update(message)
	return model, command
}

// handleConfirmKeys routes keys while a delete awaits confirmation.
// Only y, n, and escape do anything.
func (model Model) handleConfirmKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if message.Type == tea.KeyCtrlC {
		return model, tea.Quit
	}
	switch {
	case key.Matches(message, model.keys.Confirm):
		model.mode = modeBrowse
		return model, model.startDelete(model.pendingDelete)

	case key.Matches(message, model.keys.Cancel):
		model.mode = modeBrowse
		model.status = "delete canceled"
		model.statusError = false
	}
	return model, nil
}

// rejectBusy reports that a transfer is already running. One transfer
// at a time keeps the progress display unambiguous.
func (model Model) rejectBusy() (tea.Model, tea.Cmd) {
	model.status = "a transfer is already running"
	model.statusError = true
	return model, nil
}

// selected returns the entry under the cursor.
func (model Model) selected() (transfer.Entry, bool) {
	if model.cursor < 0 || model.cursor >= len(model.entries) {
		return transfer.Entry{}, false
	}
	return model.entries[model.cursor], true
}

// refresh reloads the catalog, showing the spinner while the load is
// in flight.
func (model *Model) refresh() tea.Cmd {
	model.loading = true
	return tea.Batch(model.spinner.Tick, model.loadCatalog())
}

// beginTransfer flips the model into the transferring state.
func (model *Model) beginTransfer(events <-chan transfer.Progress) {
	model.transferring = true
	model.phase = ""
	model.fraction = 0
	model.events = events
	model.status = ""
	model.statusError = false
}

// startUpload launches an upload of the file at path on a background
// goroutine and begins listening for its progress.
func (model *Model) startUpload(path string) tea.Cmd {
	events := make(chan transfer.Progress, 1)
	model.beginTransfer(events)
	client := model.client
	run := func() tea.Msg {
		result, err := client.Upload(context.Background(), path, events)
		if err != nil {
			return transferDoneMsg{verb: verbUpload, err: err}
		}
		return transferDoneMsg{
			verb: verbUpload,
			detail: fmt.Sprintf("uploaded %s: %s in %d records, head %s",
				result.Name, humanize.Bytes(uint64(result.Size)), len(result.Records), result.Head),
		}
	}
	return tea.Batch(run, listenForProgress(events))
}

// startDownload launches a download of entry into the current
// directory on a background goroutine.
func (model *Model) startDownload(entry transfer.Entry) tea.Cmd {
	events := make(chan transfer.Progress, 1)
	model.beginTransfer(events)
	client := model.client
	run := func() tea.Msg {
		result, err := client.Download(context.Background(), entry.ID, "", events)
		if err != nil {
			return transferDoneMsg{verb: verbDownload, err: err}
		}
		return transferDoneMsg{
			verb: verbDownload,
			detail: fmt.Sprintf("downloaded %s: %s from %d records",
				result.Path, humanize.Bytes(uint64(result.Size)), result.Records),
		}
	}
	return tea.Batch(run, listenForProgress(events))
}

// startDelete launches a delete of entry's chain on a background
// goroutine.
func (model *Model) startDelete(entry transfer.Entry) tea.Cmd {
	events := make(chan transfer.Progress, 1)
	model.beginTransfer(events)
	client := model.client
	name := *entry.Record.Name
	run := func() tea.Msg {
		result, err := client.Delete(context.Background(), entry.ID, events)
		if err != nil {
			return transferDoneMsg{verb: verbDelete, err: err}
		}
		return transferDoneMsg{
			verb:   verbDelete,
			detail: fmt.Sprintf("deleted %s: %d records", name, result.Records),
		}
	}
	return tea.Batch(run, listenForProgress(events))
}

// moveCursor moves the catalog cursor by delta, clamped to the list.
func (model *Model) moveCursor(delta int) {
	model.cursor += delta
	model.clampCursor()
}

// clampCursor keeps the cursor inside the catalog and visible.
func (model *Model) clampCursor() {
	if model.cursor >= len(model.entries) {
		model.cursor = len(model.entries) - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}
	model.ensureCursorVisible()
}

// ensureCursorVisible adjusts scrollOffset so the cursor is within the
// visible window.
func (model *Model) ensureCursorVisible() {
	visible := model.visibleHeight()
	if visible <= 0 {
		return
	}
	maxOffset := len(model.entries) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if model.scrollOffset > maxOffset {
		model.scrollOffset = maxOffset
	}
	if model.cursor < model.scrollOffset {
		model.scrollOffset = model.cursor
	}
	if model.cursor >= model.scrollOffset+visible {
		model.scrollOffset = model.cursor - visible + 1
	}
}

// visibleHeight returns the number of catalog rows that fit between
// the chrome: the header and column captions above, the separator,
// action line, and help bar below.
func (model Model) visibleHeight() int {
	return model.height - 5
}

// progressBarWidth sizes the progress bar against the terminal width,
// leaving room for the indent and the phase label.
func progressBarWidth(width int) int {
	barWidth := width - 2 - phaseLabelWidth
	if barWidth > 50 {
		barWidth = 50
	}
	if barWidth < 10 {
		barWidth = 10
	}
	return barWidth
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, model.renderHeader())
	sections = append(sections, model.renderTable())

	separator := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.width))
	sections = append(sections, separator)

	sections = append(sections, model.renderAction())
	sections = append(sections, model.renderHelp())

	return strings.Join(sections, "\n")
}

// renderHeader renders the top chrome line: title on the left, catalog
// stats (or the loading spinner) on the right.
func (model Model) renderHeader() string {
	separatorStyle := lipgloss.NewStyle().Foreground(model.theme.BorderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	statsStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	title := " filament "
	var stats string
	if model.loading {
		stats = " " + model.spinner.View() + "fetching "
	} else {
		var total uint64
		for _, entry := range model.entries {
			if entry.Record.Size != nil {
				total += *entry.Record.Size
			}
		}
		stats = fmt.Sprintf(" %d files, %s ", len(model.entries), humanize.Bytes(total))
	}

	filler := model.width - 3 - lipgloss.Width(title) - lipgloss.Width(stats) - 2
	if filler < 0 {
		filler = 0
	}

	return separatorStyle.Render("───") +
		titleStyle.Render(title) +
		separatorStyle.Render(strings.Repeat("─", filler)) +
		statsStyle.Render(stats) +
		separatorStyle.Render("──")
}

// renderTable renders the column captions and the visible slice of the
// catalog with a scrollbar on the right edge.
func (model Model) renderTable() string {
	rowWidth := model.width - 1 // scrollbar column
	renderer := NewCatalogRenderer(model.theme, rowWidth)

	visible := model.visibleHeight()
	if visible < 0 {
		visible = 0
	}

	if len(model.entries) == 0 {
		text := "No files stored."
		if model.loading {
			text = "Fetching catalog..."
		}
		empty := lipgloss.Place(
			model.width, visible,
			lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(text),
		)
		return renderer.RenderCaptions() + "\n" + empty
	}

	var rows []string
	for index := model.scrollOffset; index < model.scrollOffset+visible && index < len(model.entries); index++ {
		rows = append(rows, renderer.RenderRow(model.entries[index], index == model.cursor))
	}

	// Pad empty rows.
	rendered := len(rows)
	if rendered < visible {
		emptyStyle := lipgloss.NewStyle().Width(rowWidth)
		for padding := rendered; padding < visible; padding++ {
			rows = append(rows, emptyStyle.Render(""))
		}
	}

	scrollbar := renderScrollbar(model.theme, visible, len(model.entries), visible, model.scrollOffset)

	contentStyle := lipgloss.NewStyle().Width(rowWidth).Height(visible)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		contentStyle.Render(strings.Join(rows, "\n")),
		scrollbar,
	)
	return renderer.RenderCaptions() + "\n" + body
}

// renderAction renders the line between the separator and the help
// bar: the upload prompt, the delete confirmation, a running
// transfer's progress, or the status of the last operation.
func (model Model) renderAction() string {
	switch {
	case model.mode == modePrompt:
		return " " + model.pathInput.View()

	case model.mode == modeConfirm:
		question := fmt.Sprintf("delete %s? y/n", *model.pendingDelete.Record.Name)
		return " " + lipgloss.NewStyle().Foreground(model.theme.Accent).Render(question)

	case model.transferring:
		label := model.phase
		if label == "" {
			label = "starting"
		}
		labelStyle := lipgloss.NewStyle().Foreground(model.theme.Accent)
		return fmt.Sprintf(" %s %s",
			labelStyle.Render(fmt.Sprintf("%-*s", phaseLabelWidth-1, label)),
			model.progressBar.ViewAs(model.fraction))

	case model.status != "":
		color := model.theme.StatusInfo
		if model.statusError {
			color = model.theme.StatusError
		}
		status := ansi.Truncate(model.status, model.width-1, "…")
		return " " + lipgloss.NewStyle().Foreground(color).Render(status)
	}
	return ""
}

// renderHelp renders the bottom help bar for the current mode.
func (model Model) renderHelp() string {
	style := lipgloss.NewStyle().Foreground(model.theme.HelpText)

	var help string
	switch model.mode {
	case modePrompt:
		help = " enter upload  esc cancel"
	case modeConfirm:
		help = " y delete  n cancel"
	default:
		help = " q quit  ↑↓ navigate  r refresh  u upload  d download  x delete"
		if len(model.entries) > model.visibleHeight() {
			help += fmt.Sprintf("  %d/%d", model.cursor+1, len(model.entries))
		}
	}
	return style.Render(help)
}
