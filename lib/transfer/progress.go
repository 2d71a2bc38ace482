// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import "context"

// Phase labels carried by Progress events, in the order the phases
// run. Upload passes through disassembling, uploading, and editing;
// download and delete each have a single phase.
const (
	PhaseDisassembling = "disassembling"
	PhaseUploading     = "uploading"
	PhaseEditing       = "editing"
	PhaseDownloading   = "downloading"
	PhaseDeleting      = "deleting"
)

// Progress is one observation of a running operation. Fractions are
// in [0, 1], non-decreasing within a phase, 0 when a phase starts and
// 1 when it completes. A new phase resets the fraction to 0.
type Progress struct {
	// Label names the current phase.
	Label string

	// Fraction is the completed share of the current phase.
	Fraction float64
}

// emit delivers one progress event, giving up when the context is
// canceled. A nil channel drops events so operations can run
// unobserved without branching at every call site.
func emit(ctx context.Context, ch chan<- Progress, label string, fraction float64) error {
	if ch == nil {
		return nil
	}
	select {
	case ch <- Progress{Label: label, Fraction: fraction}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
