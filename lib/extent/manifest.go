// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package extent

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/filament-archive/filament/lib/codec"
)

// Checksum is a 32-byte BLAKE3 digest of a file's content.
type Checksum [32]byte

// String returns the hex encoding, the canonical form for logs and
// error messages.
func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}

// Manifest describes a split file: what was split, how, and the
// checksum of the original bytes. The splitter writes it beside the
// extents as "<name>.manifest" (CBOR); the joiner verifies against it
// and the uploader reuses its size and count instead of re-scanning
// the extents. Manifests are local staging state and are never
// uploaded.
type Manifest struct {
	// Name is the original filename (no directory).
	Name string `cbor:"name"`

	// Size is the source's total byte length.
	Size int64 `cbor:"size"`

	// ExtentSize is the split size; every extent but the last has
	// exactly this many bytes.
	ExtentSize int64 `cbor:"extent_size"`

	// Extents is the number of extents written. 0 for an empty source.
	Extents int `cbor:"extents"`

	// Checksum is the BLAKE3 digest of the complete source content.
	Checksum Checksum `cbor:"checksum"`
}

// ManifestName returns the manifest filename for a source filename.
func ManifestName(name string) string {
	return name + ".manifest"
}

// WriteManifest atomically persists a manifest: written to a temporary
// file in the same directory first, then renamed into place, so a
// reader never sees a partial manifest.
func WriteManifest(path string, m Manifest) error {
	data, err := codec.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest for %s: %w", m.Name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp manifest file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp manifest file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming manifest into place: %w", err)
	}
	success = true
	return nil
}

// ReadManifest loads a manifest from disk.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := codec.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decoding manifest %s: %w", path, err)
	}
	return m, nil
}
