// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"io"
)

// Store is the record-store surface the transfer layer builds on. The
// production implementation is *Client; tests use in-memory fakes.
//
// Records are subject to the store's structural limits: at most ten
// attachments per record, each attachment bounded in size. Callers
// are responsible for batching within those limits — the store does
// not split oversized requests, it rejects them.
type Store interface {
	// CreateRecord creates a record carrying the given files and text
	// content. Returns the stored record, including the IDs and CDN
	// URLs the store assigned to each attachment.
	CreateRecord(ctx context.Context, channel ChannelID, files []FileUpload, content string) (Record, error)

	// EditRecord replaces a record's text content. Attachments are
	// unaffected. Returns the updated record.
	EditRecord(ctx context.Context, channel ChannelID, id RecordID, content string) (Record, error)

	// GetRecord fetches a single record by ID.
	GetRecord(ctx context.Context, channel ChannelID, id RecordID) (Record, error)

	// DeleteRecord permanently removes a record and its attachments.
	DeleteRecord(ctx context.Context, channel ChannelID, id RecordID) error

	// ListPage fetches up to limit records older than before, newest
	// first. A zero before means the newest page. An empty result
	// means the channel history is exhausted.
	ListPage(ctx context.Context, channel ChannelID, before RecordID, limit int) ([]Record, error)

	// FetchAttachment streams an attachment's bytes from its CDN URL.
	// The caller must close the returned reader.
	FetchAttachment(ctx context.Context, url string) (io.ReadCloser, error)
}

// Compile-time check: *Client implements Store.
var _ Store = (*Client)(nil)
