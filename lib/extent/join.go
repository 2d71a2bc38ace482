// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package extent

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// JoinResult reports what Join read and wrote.
type JoinResult struct {
	// Path is where the reassembled file was written.
	Path string

	// Size is the number of bytes written.
	Size int64

	// Extents are the consumed extent paths in index order.
	Extents []string

	// ManifestPath is the manifest consumed for verification, or ""
	// when no manifest was found.
	ManifestPath string

	// Verified reports whether the result was checked against a
	// manifest. When false the join is order-correct but unchecked.
	Verified bool
}

// Join reassembles the extents of name found in dir into dest, or
// into dir/name when dest is empty. Extents are matched by the
// "<name>.part<N>" pattern, ordered by the full decimal index, and
// must be contiguous from 0. The output is written through a temp
// file and renamed, so a partial join never occupies the final path.
//
// When "<name>.manifest" exists in dir the join is verified against
// it: the extent count, the byte count, and the BLAKE3 checksum of
// the joined bytes must all match. A manifest recording zero extents
// reassembles to an empty file. Without a manifest at least one
// extent must exist.
//
// onExtent, when non-nil, is called after each extent is consumed
// with the count so far and the total; a non-nil error from the
// callback aborts the join and is returned unwrapped. Inputs are never
// removed; the caller decides what to do with them afterward.
func Join(dir, name, dest string, onExtent func(done, total int) error) (*JoinResult, error) {
	parts, err := collectExtents(dir, name)
	if err != nil {
		return nil, err
	}

	result := &JoinResult{
		Path:    dest,
		Extents: parts,
	}
	if result.Path == "" {
		result.Path = filepath.Join(dir, name)
	}

	var manifest *Manifest
	manifestPath := filepath.Join(dir, ManifestName(name))
	switch m, err := ReadManifest(manifestPath); {
	case err == nil:
		manifest = &m
		result.ManifestPath = manifestPath
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if manifest != nil && manifest.Extents != len(parts) {
		return nil, fmt.Errorf("found %d extents of %s, manifest records %d",
			len(parts), name, manifest.Extents)
	}
	if manifest == nil && len(parts) == 0 {
		return nil, fmt.Errorf("no extents of %s in %s", name, dir)
	}

	// Verification happens against the temp file, before the rename,
	// so a corrupt join never occupies the final path.
	temp, checksum, err := joinToTemp(result, onExtent)
	if err != nil {
		return nil, err
	}
	success := false
	defer func() {
		if !success {
			os.Remove(temp)
		}
	}()

	if manifest != nil {
		if result.Size != manifest.Size {
			return nil, fmt.Errorf("joined %d bytes, manifest records %d",
				result.Size, manifest.Size)
		}
		if checksum != manifest.Checksum {
			return nil, fmt.Errorf("joined checksum %s does not match manifest checksum %s",
				checksum, manifest.Checksum)
		}
		result.Verified = true
	}

	if err := os.Rename(temp, result.Path); err != nil {
		return nil, fmt.Errorf("renaming joined file: %w", err)
	}
	success = true
	return result, nil
}

// collectExtents scans dir for "<name>.part<N>" entries and returns
// their paths ordered by N, which must be contiguous from 0. The
// index is the full decimal suffix: part10 sorts after part9.
func collectExtents(dir, name string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading extent directory: %w", err)
	}

	prefix := name + ".part"
	indexed := make(map[int]string)
	var indices []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		rest, ok := strings.CutPrefix(entry.Name(), prefix)
		if !ok {
			continue
		}
		index, err := strconv.ParseUint(rest, 10, 32)
		if err != nil {
			continue
		}
		if prev, ok := indexed[int(index)]; ok {
			return nil, fmt.Errorf("extent index %d appears twice: %s and %s",
				index, prev, entry.Name())
		}
		indexed[int(index)] = entry.Name()
		indices = append(indices, int(index))
	}
	sort.Ints(indices)

	parts := make([]string, 0, len(indices))
	for i, index := range indices {
		if index != i {
			return nil, fmt.Errorf("extent %s is missing", ExtentName(name, i))
		}
		parts = append(parts, filepath.Join(dir, indexed[index]))
	}
	return parts, nil
}

// joinToTemp concatenates result.Extents into a temp file beside
// result.Path, filling in result.Size. It returns the temp path and
// the BLAKE3 checksum of the written bytes; the caller renames or
// removes the temp file.
func joinToTemp(result *JoinResult, onExtent func(done, total int) error) (string, Checksum, error) {
	var checksum Checksum

	out, err := os.CreateTemp(filepath.Dir(result.Path), filepath.Base(result.Path)+"-*.tmp")
	if err != nil {
		return "", checksum, fmt.Errorf("creating temp file: %w", err)
	}
	success := false
	defer func() {
		if !success {
			out.Close()
			os.Remove(out.Name())
		}
	}()

	hasher := blake3.New()
	sink := io.MultiWriter(out, hasher)
	for i, part := range result.Extents {
		n, err := copyExtent(sink, part)
		if err != nil {
			return "", checksum, fmt.Errorf("reading extent %d: %w", i, err)
		}
		result.Size += n
		if onExtent != nil {
			if err := onExtent(i+1, len(result.Extents)); err != nil {
				return "", checksum, err
			}
		}
	}

	if err := out.Close(); err != nil {
		return "", checksum, fmt.Errorf("writing joined file: %w", err)
	}
	success = true

	copy(checksum[:], hasher.Sum(nil))
	return out.Name(), checksum, nil
}

func copyExtent(sink io.Writer, path string) (int64, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	return io.Copy(sink, in)
}
