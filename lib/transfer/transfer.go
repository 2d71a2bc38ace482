// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/filament-archive/filament/discord"
	"github.com/filament-archive/filament/lib/chain"
	"github.com/filament-archive/filament/lib/extent"
)

// Options configures a transfer client.
type Options struct {
	// Store performs the remote record operations. Required.
	Store discord.Store

	// Channel is the container every operation addresses. Required.
	Channel discord.ChannelID

	// Logger receives operational messages. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	// ExtentSize is the maximum byte length of one extent. Defaults
	// to extent.DefaultExtentSize.
	ExtentSize int64

	// BatchLimit is the maximum number of extents attached to one
	// record. Defaults to extent.BatchLimit, the store's cap.
	BatchLimit int

	// StagingDir is the directory under which uploads create their
	// per-transfer staging directories. Defaults to os.TempDir().
	StagingDir string
}

// Client runs upload, download, delete, and list operations against
// one container of a record store.
//
// Operations that take a progress channel close it on return, success
// or failure, so a consumer can range over the channel until the
// operation is done. A nil progress channel runs the operation
// unobserved. A Client is safe for concurrent use; operations on the
// same chain are not coordinated and must be serialized by the caller.
type Client struct {
	store      discord.Store
	channel    discord.ChannelID
	logger     *slog.Logger
	extentSize int64
	batchLimit int
	stagingDir string
}

// New creates a transfer client.
func New(opts Options) (*Client, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("transfer: Store is required")
	}
	if opts.Channel == 0 {
		return nil, fmt.Errorf("transfer: Channel is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	extentSize := opts.ExtentSize
	if extentSize <= 0 {
		extentSize = extent.DefaultExtentSize
	}
	batchLimit := opts.BatchLimit
	if batchLimit <= 0 {
		batchLimit = extent.BatchLimit
	}
	stagingDir := opts.StagingDir
	if stagingDir == "" {
		stagingDir = os.TempDir()
	}
	return &Client{
		store:      opts.Store,
		channel:    opts.Channel,
		logger:     logger,
		extentSize: extentSize,
		batchLimit: batchLimit,
		stagingDir: stagingDir,
	}, nil
}

// fetchRecord gets one record and decodes its chain content.
func (c *Client) fetchRecord(ctx context.Context, id discord.RecordID) (discord.Record, chain.Record, error) {
	record, err := c.store.GetRecord(ctx, c.channel, id)
	if err != nil {
		return discord.Record{}, chain.Record{}, fmt.Errorf("fetching record %s: %w", id, err)
	}
	decoded, err := chain.Decode(record.Content)
	if err != nil {
		return discord.Record{}, chain.Record{}, fmt.Errorf("decoding record %s: %w", id, err)
	}
	return record, decoded, nil
}

// fetchHead fetches id and requires it to carry the head fields.
func (c *Client) fetchHead(ctx context.Context, id discord.RecordID) (discord.Record, chain.Record, error) {
	record, decoded, err := c.fetchRecord(ctx, id)
	if err != nil {
		return discord.Record{}, chain.Record{}, err
	}
	if missing := decoded.MissingHeadFields(); len(missing) > 0 {
		return discord.Record{}, chain.Record{}, &InvalidRecordError{ID: id, Missing: missing}
	}
	return record, decoded, nil
}
