// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"fmt"
	"strings"

	"github.com/filament-archive/filament/discord"
)

// InvalidRecordError reports a record that decoded cleanly but lacks
// the fields a chain head must carry. It is returned when download or
// delete is pointed at a continuation record, an upload placeholder,
// or an unrelated message in the same container.
type InvalidRecordError struct {
	// ID is the offending record.
	ID discord.RecordID

	// Missing lists the absent head fields in wire-key form.
	Missing []string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("record %s is not a chain head: missing %s",
		e.ID, strings.Join(e.Missing, ", "))
}

// IncompleteChainError reports a chain whose tail arrived before the
// head's extent count was consumed. It means the remote chain is
// damaged, most often by a partially deleted or never-finished upload,
// and the operation failed rather than passing off a truncated file as
// complete.
type IncompleteChainError struct {
	// Head is the record the walk started from.
	Head discord.RecordID

	// Last is the record where the chain ended.
	Last discord.RecordID

	// Consumed is the number of extents fetched before the end.
	Consumed uint64

	// Expected is the extent count promised by the head.
	Expected uint64
}

func (e *IncompleteChainError) Error() string {
	return fmt.Sprintf("chain %s ended early at record %s: consumed %d of %d extents",
		e.Head, e.Last, e.Consumed, e.Expected)
}
