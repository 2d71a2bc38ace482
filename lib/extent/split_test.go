// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package extent

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zeebo/blake3"
)

// writeSource creates a file named name under a fresh temp directory
// and returns its path.
func writeSource(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// sequence returns n bytes cycling through 0..255 so extent
// boundaries are detectable in assertions.
func sequence(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

// hashBytes computes the BLAKE3 checksum of data the same way Split
// computes it over the source stream.
func hashBytes(data []byte) Checksum {
	hasher := blake3.New()
	hasher.Write(data)
	var sum Checksum
	copy(sum[:], hasher.Sum(nil))
	return sum
}

func TestExtentName(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  string
	}{
		{"report.pdf", 0, "report.pdf.part0"},
		{"report.pdf", 9, "report.pdf.part9"},
		{"report.pdf", 10, "report.pdf.part10"},
		{"a", 123, "a.part123"},
	}
	for _, test := range tests {
		got := ExtentName(test.name, test.index)
		if got != test.want {
			t.Errorf("ExtentName(%q, %d) = %q, want %q", test.name, test.index, got, test.want)
		}
	}
}

func TestSplitProducesExtents(t *testing.T) {
	data := sequence(25)
	source := writeSource(t, "blob.bin", data)
	dest := t.TempDir()

	result, err := Split(source, dest, 10, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Extents) != 3 {
		t.Fatalf("extent count = %d, want 3", len(result.Extents))
	}
	wantSizes := []int{10, 10, 5}
	for i, path := range result.Extents {
		wantName := ExtentName("blob.bin", i)
		if filepath.Base(path) != wantName {
			t.Errorf("extent %d named %q, want %q", i, filepath.Base(path), wantName)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading extent %d: %v", i, err)
		}
		if len(content) != wantSizes[i] {
			t.Errorf("extent %d size = %d, want %d", i, len(content), wantSizes[i])
		}
		if !bytes.Equal(content, data[i*10:i*10+wantSizes[i]]) {
			t.Errorf("extent %d content does not match source slice", i)
		}
	}

	m := result.Manifest
	if m.Name != "blob.bin" {
		t.Errorf("manifest name = %q, want %q", m.Name, "blob.bin")
	}
	if m.Size != 25 {
		t.Errorf("manifest size = %d, want 25", m.Size)
	}
	if m.ExtentSize != 10 {
		t.Errorf("manifest extent size = %d, want 10", m.ExtentSize)
	}
	if m.Extents != 3 {
		t.Errorf("manifest extents = %d, want 3", m.Extents)
	}
	if want := hashBytes(data); m.Checksum != want {
		t.Errorf("manifest checksum = %s, want %s", m.Checksum, want)
	}

	loaded, err := ReadManifest(result.ManifestPath)
	if err != nil {
		t.Fatalf("reading written manifest: %v", err)
	}
	if loaded != m {
		t.Errorf("manifest on disk = %+v, want %+v", loaded, m)
	}
}

func TestSplitExactMultiple(t *testing.T) {
	source := writeSource(t, "blob.bin", sequence(20))
	dest := t.TempDir()

	result, err := Split(source, dest, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Extents) != 2 {
		t.Fatalf("extent count = %d, want 2 (no trailing empty extent)", len(result.Extents))
	}
	for i, path := range result.Extents {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() != 10 {
			t.Errorf("extent %d size = %d, want 10", i, info.Size())
		}
	}
}

func TestSplitSmallerThanExtentSize(t *testing.T) {
	source := writeSource(t, "note.txt", []byte("hello"))
	dest := t.TempDir()

	result, err := Split(source, dest, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Extents) != 1 {
		t.Fatalf("extent count = %d, want 1", len(result.Extents))
	}
	if result.Manifest.Size != 5 {
		t.Errorf("manifest size = %d, want 5", result.Manifest.Size)
	}
}

func TestSplitEmptyFile(t *testing.T) {
	source := writeSource(t, "empty.bin", nil)
	dest := t.TempDir()

	result, err := Split(source, dest, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Extents) != 0 {
		t.Fatalf("extent count = %d, want 0", len(result.Extents))
	}
	if result.Manifest.Extents != 0 {
		t.Errorf("manifest extents = %d, want 0", result.Manifest.Extents)
	}
	if result.Manifest.Size != 0 {
		t.Errorf("manifest size = %d, want 0", result.Manifest.Size)
	}
	if want := hashBytes(nil); result.Manifest.Checksum != want {
		t.Errorf("manifest checksum = %s, want checksum of empty input %s",
			result.Manifest.Checksum, want)
	}
	if _, err := os.Stat(result.ManifestPath); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
}

func TestSplitProgress(t *testing.T) {
	source := writeSource(t, "blob.bin", sequence(25))
	dest := t.TempDir()

	type call struct{ written, total int }
	var calls []call
	_, err := Split(source, dest, 10, func(written, total int) error {
		calls = append(calls, call{written, total})
		return nil
	})
	if err != nil {
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

func TestSplitCallbackAborts(t *testing.T) {
	source := writeSource(t, "blob.bin", sequence(25))
	dest := t.TempDir()

	abort := errors.New("stop")
	_, err := Split(source, dest, 10, func(written, total int) error {
		if written == 2 {
			return abort
		}
		return nil
	})
	if !errors.Is(err, abort) {
		t.Fatalf("err = %v, want the callback error", err)
	}
	// No manifest is written for an aborted split.
	if _, statErr := os.Stat(filepath.Join(dest, ManifestName("blob.bin"))); !os.IsNotExist(statErr) {
		t.Error("aborted split should not write a manifest")
	}
}

func TestSplitInvalidExtentSize(t *testing.T) {
	source := writeSource(t, "blob.bin", sequence(5))
	for _, size := range []int64{0, -1} {
		if _, err := Split(source, t.TempDir(), size, nil); err == nil {
			t.Errorf("Split with extent size %d should fail", size)
		}
	}
}

func TestSplitMissingSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.bin")
	if _, err := Split(missing, t.TempDir(), 10, nil); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestSplitCreatesDestDir(t *testing.T) {
	source := writeSource(t, "blob.bin", sequence(5))
	dest := filepath.Join(t.TempDir(), "staging", "nested")

	result, err := Split(source, dest, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Extents) != 1 {
		t.Fatalf("extent count = %d, want 1", len(result.Extents))
	}
	if got := filepath.Dir(result.Extents[0]); got != dest {
		t.Errorf("extent written to %s, want %s", got, dest)
	}
}
