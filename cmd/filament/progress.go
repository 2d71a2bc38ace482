// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/filament-archive/filament/lib/transfer"
)

// runWithProgress executes a transfer operation in a background
// goroutine and renders its progress events in the foreground until
// the operation closes the channel, then returns the operation's
// error. The channel is buffered by one event so the transfer is not
// lockstepped to stderr writes.
func runWithProgress(logger *slog.Logger, operation func(progress chan<- transfer.Progress) error) error {
	progress := make(chan transfer.Progress, 1)
	done := make(chan error, 1)
	go func() {
		done <- operation(progress)
	}()

	renderer := newProgressRenderer(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), logger)
	for event := range progress {
		renderer.update(event)
	}
	renderer.finish()
	return <-done
}

// progressRenderer turns the progress stream into terminal output.
// On a terminal it rewrites a single "label  nn%" line in place; when
// stderr is piped it logs phase transitions instead, so scripts and CI
// see one line per phase rather than a stream of carriage returns.
type progressRenderer struct {
	out      io.Writer
	logger   *slog.Logger
	terminal bool

	label   string
	percent int
	dirty   bool
}

func newProgressRenderer(out io.Writer, terminal bool, logger *slog.Logger) *progressRenderer {
	return &progressRenderer{out: out, logger: logger, terminal: terminal, percent: -1}
}

func (r *progressRenderer) update(event transfer.Progress) {
	percent := int(event.Fraction * 100)
	if event.Label == r.label && percent == r.percent {
		return
	}

	if !r.terminal {
		if event.Label != r.label {
			r.logger.Info("transfer phase", "phase", event.Label)
		}
		r.label = event.Label
		r.percent = percent
		return
	}

	// Trailing spaces cover the previous line when the label shrinks.
	fmt.Fprintf(r.out, "\r%s  %3d%%   ", event.Label, percent)
	r.label = event.Label
	r.percent = percent
	r.dirty = true
}

// finish terminates the in-place line so subsequent output starts on
// a fresh row.
func (r *progressRenderer) finish() {
	if r.dirty {
		fmt.Fprintln(r.out)
	}
}
