// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/filament-archive/filament/discord"
	"github.com/filament-archive/filament/lib/chain"
	"github.com/filament-archive/filament/lib/extent"
)

// UploadResult describes a committed chain.
type UploadResult struct {
	// Head is the chain's first record, the handle for download,
	// delete, and the catalog.
	Head discord.RecordID

	// Records are the created record ids in chain order.
	Records []discord.RecordID

	// Name is the stored filename, the source's base name.
	Name string

	// Size is the source length in bytes.
	Size int64

	// Extents is the number of extents uploaded.
	Extents int
}

// Upload stores the file at sourcePath as a new chain in the
// container and returns the created record ids, head first.
//
// The source is first split into extents in a fresh staging directory
// (phase "disassembling"). One record per batch of extents is then
// created with placeholder content (phase "uploading"); placeholders
// lack the marker line, so a crash mid-upload leaves records the
// catalog ignores. Once every id is known, each record's content is
// edited to its final chain encoding in order, head first (phase
// "editing"). Staging is removed last; if that removal fails, the
// result is returned together with the error because the remote chain
// is already committed.
//
// Any remote failure aborts the upload and leaves the staging extents
// in place.
func (c *Client) Upload(ctx context.Context, sourcePath string, progress chan<- Progress) (*UploadResult, error) {
	if progress != nil {
		defer close(progress)
	}

	transferID := uuid.New().String()
	logger := c.logger.With("transfer", transferID, "source", sourcePath)
	staging := filepath.Join(c.stagingDir, "filament-"+transferID)

	if err := emit(ctx, progress, PhaseDisassembling, 0); err != nil {
		return nil, err
	}
	split, err := extent.Split(sourcePath, staging, c.extentSize, func(written, total int) error {
		fraction := 1.0
		if total > 0 {
			fraction = float64(written) / float64(total)
		}
		return emit(ctx, progress, PhaseDisassembling, fraction)
	})
	if err != nil {
		return nil, fmt.Errorf("splitting %s: %w", sourcePath, err)
	}
	if err := emit(ctx, progress, PhaseDisassembling, 1); err != nil {
		return nil, err
	}
	manifest := split.Manifest
	logger.Info("source disassembled",
		"extents", manifest.Extents, "size", manifest.Size)

	// An empty source still yields one batch, so the file gets a
	// head record with len=0.
	batches, err := extent.Batch(split.Extents, c.batchLimit)
	if err != nil {
		return nil, err
	}

	if err := emit(ctx, progress, PhaseUploading, 0); err != nil {
		return nil, err
	}
	ids := make([]discord.RecordID, 0, len(batches))
	for i, batch := range batches {
		record, err := c.createBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("uploading batch %d of %d: %w", i+1, len(batches), err)
		}
		ids = append(ids, record.ID)
		logger.Debug("batch uploaded", "record", record.ID, "extents", len(batch))
		if err := emit(ctx, progress, PhaseUploading, float64(i+1)/float64(len(batches))); err != nil {
			return nil, err
		}
	}

	// Every successor id is known now, so each record's final content
	// can be written in chain order.
	if err := emit(ctx, progress, PhaseEditing, 0); err != nil {
		return nil, err
	}
	for k, id := range ids {
		var r chain.Record
		if k == 0 {
			r = chain.Head(manifest.Name, uint64(manifest.Size), uint64(manifest.Extents))
		}
		if k+1 < len(ids) {
			next := uint64(ids[k+1])
			r.Next = &next
		}
		content, err := r.Encode()
		if err != nil {
			return nil, fmt.Errorf("encoding record %d: %w", k, err)
		}
		if _, err := c.store.EditRecord(ctx, c.channel, id, content); err != nil {
			return nil, fmt.Errorf("editing record %s (%d of %d): %w", id, k+1, len(ids), err)
		}
		if err := emit(ctx, progress, PhaseEditing, float64(k+1)/float64(len(ids))); err != nil {
			return nil, err
		}
	}

	result := &UploadResult{
		Head:    ids[0],
		Records: ids,
		Name:    manifest.Name,
		Size:    manifest.Size,
		Extents: manifest.Extents,
	}
	logger.Info("chain committed", "head", result.Head, "records", len(ids))

	if err := os.RemoveAll(staging); err != nil {
		return result, fmt.Errorf("removing staging directory %s: %w", staging, err)
	}
	return result, nil
}

// createBatch opens the batch's extent files and creates one record
// with placeholder content carrying them as attachments.
func (c *Client) createBatch(ctx context.Context, batch []string) (discord.Record, error) {
	files := make([]discord.FileUpload, 0, len(batch))
	defer func() {
		for _, f := range files {
			if closer, ok := f.Reader.(io.Closer); ok {
				closer.Close()
			}
		}
	}()
	for _, path := range batch {
		f, err := os.Open(path)
		if err != nil {
			return discord.Record{}, fmt.Errorf("opening extent: %w", err)
		}
		files = append(files, discord.FileUpload{Name: filepath.Base(path), Reader: f})
	}
	return c.store.CreateRecord(ctx, c.channel, files, chain.Placeholder)
}
