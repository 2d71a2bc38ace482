// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package extent

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestJoinRoundTrip(t *testing.T) {
	data := sequence(25)
	source := writeSource(t, "blob.bin", data)
	staging := t.TempDir()

	if _, err := Split(source, staging, 10, nil); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "rebuilt.bin")
	result, err := Join(staging, "blob.bin", dest, nil)
	if err != nil {
		t.Fatal(err)
	}

	if result.Path != dest {
		t.Errorf("path = %q, want %q", result.Path, dest)
	}
	if result.Size != 25 {
		t.Errorf("size = %d, want 25", result.Size)
	}
	if len(result.Extents) != 3 {
		t.Errorf("extent count = %d, want 3", len(result.Extents))
	}
	if !result.Verified {
		t.Error("join with manifest present should be verified")
	}

	rebuilt, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rebuilt, data) {
		t.Error("rebuilt file does not match source")
	}
}

func TestJoinDefaultDest(t *testing.T) {
	source := writeSource(t, "blob.bin", sequence(15))
	staging := t.TempDir()
	if _, err := Split(source, staging, 10, nil); err != nil {
		t.Fatal(err)
	}

	result, err := Join(staging, "blob.bin", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(staging, "blob.bin"); result.Path != want {
		t.Errorf("path = %q, want %q", result.Path, want)
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Errorf("joined file not written: %v", err)
	}
}

func TestJoinEmptyFile(t *testing.T) {
	source := writeSource(t, "empty.bin", nil)
	staging := t.TempDir()
	if _, err := Split(source, staging, 10, nil); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "empty.bin")
	result, err := Join(staging, "empty.bin", dest, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Size != 0 {
		t.Errorf("size = %d, want 0", result.Size)
	}
	if !result.Verified {
		t.Error("empty-file join should verify against the manifest")
	}
	info, err := os.Stat(dest)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Errorf("joined file size = %d, want 0", info.Size())
	}
}

func TestJoinNumericOrder(t *testing.T) {
	// Eleven single-byte extents: a last-character sort would place
	// part10 between part0 and part2.
	dir := t.TempDir()
	data := []byte("abcdefghijk")
	for i, b := range data {
		path := filepath.Join(dir, ExtentName("seq.bin", i))
		if err := os.WriteFile(path, []byte{b}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	dest := filepath.Join(t.TempDir(), "seq.bin")
	result, err := Join(dir, "seq.bin", dest, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Verified {
		t.Error("join without manifest must not claim verification")
	}

	rebuilt, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rebuilt, data) {
		t.Errorf("rebuilt = %q, want %q", rebuilt, data)
	}
}

func TestJoinProgress(t *testing.T) {
	source := writeSource(t, "blob.bin", sequence(25))
	staging := t.TempDir()
	if _, err := Split(source, staging, 10, nil); err != nil {
		t.Fatal(err)
	}

	type call struct{ done, total int }
	var calls []call
	dest := filepath.Join(t.TempDir(), "blob.bin")
	if _, err := Join(staging, "blob.bin", dest, func(done, total int) error {
		calls = append(calls, call{done, total})
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	want := []call{{1, 3}, {2, 3}, {3, 3}}
	if len(calls) != len(want) {
		t.Fatalf("progress calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("progress call %d = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestJoinMissingExtent(t *testing.T) {
	dir := t.TempDir()
	for _, i := range []int{0, 2} {
		path := filepath.Join(dir, ExtentName("gap.bin", i))
		if err := os.WriteFile(path, []byte{byte(i)}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	_, err := Join(dir, "gap.bin", "", nil)
	if err == nil {
		t.Fatal("expected error for missing extent")
	}
	if !strings.Contains(err.Error(), "gap.bin.part1") {
		t.Errorf("error should name the missing extent, got: %v", err)
	}
}

func TestJoinDuplicateIndex(t *testing.T) {
	// part7 and part07 parse to the same index.
	dir := t.TempDir()
	for _, name := range []string{"dup.bin.part7", "dup.bin.part07"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	_, err := Join(dir, "dup.bin", "", nil)
	if err == nil {
		t.Fatal("expected error for duplicate extent index")
	}
	if !strings.Contains(err.Error(), "twice") {
		t.Errorf("error should report the duplicate, got: %v", err)
	}
}

func TestJoinNoExtents(t *testing.T) {
	if _, err := Join(t.TempDir(), "ghost.bin", "", nil); err == nil {
		t.Fatal("expected error when no extents and no manifest exist")
	}
}

func TestJoinIgnoresUnrelatedFiles(t *testing.T) {
	source := writeSource(t, "blob.bin", sequence(15))
	staging := t.TempDir()
	if _, err := Split(source, staging, 10, nil); err != nil {
		t.Fatal(err)
	}
	// Neighbors that must not be picked up: a different file's
	// extents, a non-numeric suffix, and a subdirectory.
	for _, name := range []string{"other.bin.part0", "blob.bin.partial", "blob.bin.part1.tmp"} {
		if err := os.WriteFile(filepath.Join(staging, name), []byte("junk"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(staging, "blob.bin.part99"), 0o755); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "blob.bin")
	result, err := Join(staging, "blob.bin", dest, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Extents) != 2 {
		t.Errorf("extent count = %d, want 2", len(result.Extents))
	}
	if !result.Verified {
		t.Error("join should still verify")
	}
}

func TestJoinCountMismatch(t *testing.T) {
	source := writeSource(t, "blob.bin", sequence(25))
	staging := t.TempDir()
	result, err := Split(source, staging, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(result.Extents[2]); err != nil {
		t.Fatal(err)
	}

	_, err = Join(staging, "blob.bin", filepath.Join(t.TempDir(), "out.bin"), nil)
	if err == nil {
		t.Fatal("expected error for extent count mismatch")
	}
	if !strings.Contains(err.Error(), "manifest records 3") {
		t.Errorf("error should name the recorded count, got: %v", err)
	}
}

func TestJoinChecksumMismatch(t *testing.T) {
	source := writeSource(t, "blob.bin", sequence(25))
	staging := t.TempDir()
	result, err := Split(source, staging, 10, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Flip one byte without changing any extent's size.
	corrupt, err := os.ReadFile(result.Extents[1])
	if err != nil {
		t.Fatal(err)
	}
	corrupt[0] ^= 0xFF
	if err := os.WriteFile(result.Extents[1], corrupt, 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "out.bin")
	_, err = Join(staging, "blob.bin", dest, nil)
	if err == nil {
		t.Fatal("expected checksum mismatch error")
	}
	if !strings.Contains(err.Error(), "checksum") {
		t.Errorf("error should mention the checksum, got: %v", err)
	}
	// The corrupt result must not be left at the destination.
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("corrupt join left a file at %s", dest)
	}
}

func TestJoinSizeMismatch(t *testing.T) {
	source := writeSource(t, "blob.bin", sequence(25))
	staging := t.TempDir()
	result, err := Split(source, staging, 10, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Truncate the tail extent: count still matches, size does not.
	if err := os.WriteFile(result.Extents[2], []byte("xy"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = Join(staging, "blob.bin", filepath.Join(t.TempDir(), "out.bin"), nil)
	if err == nil {
		t.Fatal("expected size mismatch error")
	}
	if !strings.Contains(err.Error(), "manifest records 25") {
		t.Errorf("error should name the recorded size, got: %v", err)
	}
}
