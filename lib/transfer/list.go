// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"fmt"

	"github.com/filament-archive/filament/discord"
	"github.com/filament-archive/filament/lib/chain"
)

// Entry is one catalog row: a chain head and its record id.
type Entry struct {
	// ID is the head record's id, the handle for download and delete.
	ID discord.RecordID

	// Record is the decoded head metadata.
	Record chain.Record
}

// List returns every chain head in the container, newest store
// activity first. It pages through the container's full history and
// keeps the records whose content opens with the marker line and
// decodes with a name present; continuation records, upload
// placeholders, and unrelated traffic all drop out. A marker-bearing
// record that fails to decode aborts the listing with the decode
// error, because a record claiming to be ours but unreadable means
// the container holds data this version cannot interpret.
func (c *Client) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	var before discord.RecordID
	for {
		page, err := c.store.ListPage(ctx, c.channel, before, discord.MaxPageSize)
		if err != nil {
			return nil, fmt.Errorf("listing container %s: %w", c.channel, err)
		}
		if len(page) == 0 {
			return entries, nil
		}
		for _, record := range page {
			if !chain.HasMarker(record.Content) {
				continue
			}
			decoded, err := chain.Decode(record.Content)
			if err != nil {
				return nil, fmt.Errorf("decoding record %s: %w", record.ID, err)
			}
			if decoded.Name == nil {
				continue
			}
			entries = append(entries, Entry{ID: record.ID, Record: decoded})
		}
		before = page[len(page)-1].ID
	}
}
