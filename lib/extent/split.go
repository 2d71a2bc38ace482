// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package extent

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// DefaultExtentSize is the split size used when the caller does not
// override it: 10 MB decimal, comfortably under Discord's per-
// attachment upload cap.
const DefaultExtentSize = 10 * 1000 * 1000

// ExtentName returns the on-disk name of extent i of a source file.
func ExtentName(name string, index int) string {
	return fmt.Sprintf("%s.part%d", name, index)
}

// SplitResult reports what Split wrote.
type SplitResult struct {
	// Extents are the written extent paths in index order. Empty for
	// an empty source.
	Extents []string

	// Manifest describes the split, including the source checksum.
	Manifest Manifest

	// ManifestPath is where the manifest was written.
	ManifestPath string
}

// Split cuts the file at source into extents of at most extentSize
// bytes, written in index order to destDir as "<base>.part<i>", and
// writes a staging manifest beside them. The source's BLAKE3 checksum
// is computed in the same read pass.
//
// onExtent, when non-nil, is called after each extent is written with
// the count written so far and the expected total, where the total is
// ceil(source size / extentSize) from the initial stat; a total of 0
// means the length was zero or unavailable and consumers should fall
// back to treating progress as complete. A non-nil error from the
// callback aborts the split and is returned unwrapped. Extents and the
// surrounding directory are left in place on failure for the caller to
// inspect or remove; there is no rollback.
func Split(source, destDir string, extentSize int64, onExtent func(written, total int) error) (*SplitResult, error) {
	if extentSize <= 0 {
		return nil, fmt.Errorf("extent size must be positive, got %d", extentSize)
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	defer file.Close()

	// The stat size only feeds progress totals; the manifest records
	// the bytes actually read.
	var expectedTotal int
	if info, err := file.Stat(); err == nil && info.Size() > 0 {
		expectedTotal = int((info.Size() + extentSize - 1) / extentSize)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating extent directory %s: %w", destDir, err)
	}

	base := filepath.Base(source)
	hasher := blake3.New()
	reader := bufio.NewReader(file)

	result := &SplitResult{
		Manifest: Manifest{
			Name:       base,
			ExtentSize: extentSize,
		},
	}

	for index := 0; ; index++ {
		if _, err := reader.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("reading source: %w", err)
		}

		path := filepath.Join(destDir, ExtentName(base, index))
		n, err := writeExtent(path, reader, hasher, extentSize)
		if err != nil {
			return nil, fmt.Errorf("writing extent %d: %w", index, err)
		}

		result.Extents = append(result.Extents, path)
		result.Manifest.Size += n
		result.Manifest.Extents++
		if onExtent != nil {
			if err := onExtent(result.Manifest.Extents, expectedTotal); err != nil {
				return nil, err
			}
		}
	}

	copy(result.Manifest.Checksum[:], hasher.Sum(nil))

	result.ManifestPath = filepath.Join(destDir, ManifestName(base))
	if err := WriteManifest(result.ManifestPath, result.Manifest); err != nil {
		return nil, err
	}
	return result, nil
}

// writeExtent copies up to extentSize bytes from reader into a new
// file at path, feeding the same bytes through the checksum hasher.
func writeExtent(path string, reader io.Reader, hasher io.Writer, extentSize int64) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	n, err := io.CopyN(io.MultiWriter(out, hasher), reader, extentSize)
	if err != nil && !errors.Is(err, io.EOF) {
		out.Close()
		return n, err
	}
	if err := out.Close(); err != nil {
		return n, err
	}
	return n, nil
}
