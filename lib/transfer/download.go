// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/filament-archive/filament/discord"
)

// DownloadResult describes a completed download.
type DownloadResult struct {
	// Path is where the reassembled file was written.
	Path string

	// Name is the stored filename from the chain head.
	Name string

	// Size is the byte length promised by the head.
	Size int64

	// Records is the number of chain records visited.
	Records int

	// Extents is the number of extents fetched.
	Extents int
}

// Download walks the chain starting at head and reassembles the
// stored file at destPath. An empty destPath writes the head's
// filename into the current directory; the stored name is reduced to
// its base name so remote content cannot pick a directory.
//
// The record at head must carry the name, size, and len fields or the
// download fails with an *InvalidRecordError before anything is
// written. A chain that ends before the head's extent count is
// consumed fails with an *IncompleteChainError. The output is written
// directly at its final path; on failure the partial file is left in
// place.
func (c *Client) Download(ctx context.Context, head discord.RecordID, destPath string, progress chan<- Progress) (*DownloadResult, error) {
	if progress != nil {
		defer close(progress)
	}

	record, decoded, err := c.fetchHead(ctx, head)
	if err != nil {
		return nil, err
	}
	name := *decoded.Name
	size := *decoded.Size
	expected := *decoded.Extents

	if destPath == "" {
		destPath = filepath.Base(name)
	}
	logger := c.logger.With("head", head, "name", name, "dest", destPath)
	logger.Info("downloading", "size", size, "extents", expected)

	out, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", destPath, err)
	}
	defer out.Close()

	if err := emit(ctx, progress, PhaseDownloading, 0); err != nil {
		return nil, err
	}

	var (
		written  uint64
		consumed uint64
		records  int
	)
	for {
		records++
		for _, att := range record.Attachments {
			n, err := c.fetchExtent(ctx, att, out)
			if err != nil {
				return nil, fmt.Errorf("record %s: %w", record.ID, err)
			}
			written += uint64(n)
			consumed++
			fraction := 1.0
			if size > 0 {
				fraction = min(float64(written)/float64(size), 1)
			}
			if err := emit(ctx, progress, PhaseDownloading, fraction); err != nil {
				return nil, err
			}
		}
		if decoded.Next == nil {
			break
		}
		record, decoded, err = c.fetchRecord(ctx, discord.RecordID(*decoded.Next))
		if err != nil {
			return nil, err
		}
	}

	if consumed < expected {
		return nil, &IncompleteChainError{
			Head:     head,
			Last:     record.ID,
			Consumed: consumed,
			Expected: expected,
		}
	}
	if written != size {
		logger.Warn("size mismatch", "written", written, "expected", size)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("closing %s: %w", destPath, err)
	}
	if err := emit(ctx, progress, PhaseDownloading, 1); err != nil {
		return nil, err
	}
	logger.Info("download complete", "records", records, "extents", consumed)

	return &DownloadResult{
		Path:    destPath,
		Name:    name,
		Size:    int64(size),
		Records: records,
		Extents: int(consumed),
	}, nil
}

// fetchExtent streams one attachment's bytes into w.
func (c *Client) fetchExtent(ctx context.Context, att discord.Attachment, w io.Writer) (int64, error) {
	body, err := c.store.FetchAttachment(ctx, att.URL)
	if err != nil {
		return 0, fmt.Errorf("fetching extent %s: %w", att.Filename, err)
	}
	defer body.Close()
	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("writing extent %s: %w", att.Filename, err)
	}
	return n, nil
}
