// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"fmt"

	"github.com/filament-archive/filament/discord"
)

// DeleteResult describes a completed delete.
type DeleteResult struct {
	// Records is the number of chain records deleted.
	Records int
}

// Delete removes the chain starting at head from the container. Each
// record is fetched first to learn its successor, then deleted, so a
// failure partway leaves the remainder of the chain reachable from the
// last reported record id in the error.
//
// The record at head must carry the head fields; they size the work
// estimate, ceil(extents / batch limit) records, against which the
// "deleting" fraction is reported. A chain longer than the estimate
// (uploaded with a smaller batch limit) clamps the fraction at 1.
func (c *Client) Delete(ctx context.Context, head discord.RecordID, progress chan<- Progress) (*DeleteResult, error) {
	if progress != nil {
		defer close(progress)
	}

	_, decoded, err := c.fetchHead(ctx, head)
	if err != nil {
		return nil, err
	}
	expected := (*decoded.Extents + uint64(c.batchLimit) - 1) / uint64(c.batchLimit)
	if expected == 0 {
		// An empty file is a chain of exactly one record.
		expected = 1
	}
	logger := c.logger.With("head", head)

	if err := emit(ctx, progress, PhaseDeleting, 0); err != nil {
		return nil, err
	}

	deleted := 0
	id := head
	for {
		next := decoded.Next
		if err := c.store.DeleteRecord(ctx, c.channel, id); err != nil {
			return nil, fmt.Errorf("deleting record %s: %w", id, err)
		}
		deleted++
		if err := emit(ctx, progress, PhaseDeleting, min(float64(deleted)/float64(expected), 1)); err != nil {
			return nil, err
		}
		if next == nil {
			break
		}
		id = discord.RecordID(*next)
		_, decoded, err = c.fetchRecord(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	if err := emit(ctx, progress, PhaseDeleting, 1); err != nil {
		return nil, err
	}
	logger.Info("chain deleted", "records", deleted)
	return &DeleteResult{Records: deleted}, nil
}
