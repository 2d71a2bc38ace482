// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/filament-archive/filament/lib/chain"
	"github.com/filament-archive/filament/lib/testutil"
)

func TestUploadSingleBatch(t *testing.T) {
	store := newFakeStore()
	client := newTestClient(t, store, 10, 10)
	source := writeSource(t, "notes.txt", sequence(25))

	progress := make(chan Progress, 64)
	result, err := client.Upload(t.Context(), source, progress)
	if err != nil {
		t.Fatal(err)
	}
	events := drainProgress(progress)

	if result.Name != "notes.txt" {
		t.Errorf("Name = %q, want notes.txt", result.Name)
	}
	if result.Size != 25 {
		t.Errorf("Size = %d, want 25", result.Size)
	}
	if result.Extents != 3 {
		t.Errorf("Extents = %d, want 3", result.Extents)
	}
	if len(result.Records) != 1 || result.Head != result.Records[0] {
		t.Fatalf("Records = %v with head %s, want one record matching the head", result.Records, result.Head)
	}

	content := store.recordContent(t, result.Head)
	if !chain.HasMarker(content) {
		t.Error("head content lacks the marker line")
	}
	decoded, err := chain.Decode(content)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Name == nil || *decoded.Name != "notes.txt" {
		t.Errorf("decoded name = %v, want notes.txt", decoded.Name)
	}
	if decoded.Size == nil || *decoded.Size != 25 {
		t.Errorf("decoded size = %v, want 25", decoded.Size)
	}
	if decoded.Extents == nil || *decoded.Extents != 3 {
		t.Errorf("decoded len = %v, want 3", decoded.Extents)
	}
	if decoded.Next != nil {
		t.Error("single-record chain should have no next")
	}

	attachments := store.records[result.Head].Attachments
	if len(attachments) != 3 {
		t.Fatalf("%d attachments, want 3", len(attachments))
	}
	for i, att := range attachments {
		if want := fmt.Sprintf("notes.txt.part%d", i); att.Filename != want {
			t.Errorf("attachment %d named %q, want %q", i, att.Filename, want)
		}
	}

	wantPhases := []string{PhaseDisassembling, PhaseUploading, PhaseEditing}
	if got := phaseOrder(events); !slices.Equal(got, wantPhases) {
		t.Errorf("phases = %v, want %v", got, wantPhases)
	}
	for _, label := range wantPhases {
		checkPhase(t, events, label)
	}
}

func TestUploadChainLinks(t *testing.T) {
	store := newFakeStore()
	client := newTestClient(t, store, 10, 2)
	source := writeSource(t, "frames.bin", sequence(25))

	result, err := client.Upload(t.Context(), source, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("%d records, want 2 for 3 extents with batch limit 2", len(result.Records))
	}

	head, err := chain.Decode(store.recordContent(t, result.Records[0]))
	if err != nil {
		t.Fatal(err)
	}
	if head.Next == nil || *head.Next != uint64(result.Records[1]) {
		t.Errorf("head next = %v, want %s", head.Next, result.Records[1])
	}

	tail, err := chain.Decode(store.recordContent(t, result.Records[1]))
	if err != nil {
		t.Fatal(err)
	}
	if tail.Next != nil {
		t.Error("tail record should have no next")
	}
	if tail.Name != nil {
		t.Error("continuation record should not carry a name")
	}

	if n := len(store.records[result.Records[0]].Attachments); n != 2 {
		t.Errorf("first record has %d attachments, want 2", n)
	}
	if n := len(store.records[result.Records[1]].Attachments); n != 1 {
		t.Errorf("second record has %d attachments, want 1", n)
	}
}

func TestUploadRecordCounts(t *testing.T) {
	cases := []struct {
		bytes       int
		extentSize  int64
		batchLimit  int
		wantRecords int
	}{
		{25, 10, 10, 1},
		{25, 10, 2, 2},
		{25, 10, 1, 3},
		{100, 10, 3, 4},
		{5, 10, 10, 1},
		{0, 10, 10, 1},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%dB_extent%d_batch%d", tc.bytes, tc.extentSize, tc.batchLimit), func(t *testing.T) {
			store := newFakeStore()
			client := newTestClient(t, store, tc.extentSize, tc.batchLimit)
			source := writeSource(t, "data.bin", sequence(tc.bytes))

			result, err := client.Upload(t.Context(), source, nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(result.Records) != tc.wantRecords {
				t.Errorf("%d records, want %d", len(result.Records), tc.wantRecords)
			}
			if len(store.records) != tc.wantRecords {
				t.Errorf("store holds %d records, want %d", len(store.records), tc.wantRecords)
			}
		})
	}
}

func TestUploadEmptyFile(t *testing.T) {
	store := newFakeStore()
	client := newTestClient(t, store, 10, 10)
	source := writeSource(t, "empty.bin", nil)

	progress := make(chan Progress, 64)
	result, err := client.Upload(t.Context(), source, progress)
	if err != nil {
		t.Fatal(err)
	}
	events := drainProgress(progress)

	if result.Size != 0 || result.Extents != 0 {
		t.Errorf("Size = %d, Extents = %d, want 0, 0", result.Size, result.Extents)
	}
	if len(result.Records) != 1 {
		t.Fatalf("%d records, want 1: an empty file still gets a head", len(result.Records))
	}

	decoded, err := chain.Decode(store.recordContent(t, result.Head))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Name == nil || *decoded.Name != "empty.bin" {
		t.Errorf("decoded name = %v, want empty.bin", decoded.Name)
	}
	if decoded.Size == nil || *decoded.Size != 0 {
		t.Errorf("decoded size = %v, want 0", decoded.Size)
	}
	if decoded.Extents == nil || *decoded.Extents != 0 {
		t.Errorf("decoded len = %v, want 0", decoded.Extents)
	}
	if n := len(store.records[result.Head].Attachments); n != 0 {
		t.Errorf("%d attachments, want 0", n)
	}

	for _, label := range []string{PhaseDisassembling, PhaseUploading, PhaseEditing} {
		checkPhase(t, events, label)
	}
}

func TestUploadCleansStaging(t *testing.T) {
	store := newFakeStore()
	client := newTestClient(t, store, 10, 10)
	source := writeSource(t, "tidy.bin", sequence(25))

	if _, err := client.Upload(t.Context(), source, nil); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(client.stagingDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("staging root holds %d entries after upload, want 0", len(entries))
	}
}

func TestUploadCreateFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("boom")
	client := newTestClient(t, store, 10, 10)
	source := writeSource(t, "doomed.bin", sequence(25))

	progress := make(chan Progress, 64)
	_, err := client.Upload(t.Context(), source, progress)
	if err == nil {
		t.Fatal("expected the create failure to surface")
	}
	if !errors.Is(err, store.createErr) {
		t.Errorf("err = %v, want it to wrap the store error", err)
	}
	if !strings.Contains(err.Error(), "batch 1 of 1") {
		t.Errorf("err = %v, want batch context", err)
	}
	requireClosedProgress(t, progress)

	// Staging extents stay on disk for inspection.
	entries, readErr := os.ReadDir(client.stagingDir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) == 0 {
		t.Error("staging directory should be left in place on failure")
	}
}

func TestUploadEditFailure(t *testing.T) {
	store := newFakeStore()
	store.editErr = errors.New("patch refused")
	client := newTestClient(t, store, 10, 10)
	source := writeSource(t, "stuck.bin", sequence(25))

	_, err := client.Upload(t.Context(), source, nil)
	if !errors.Is(err, store.editErr) {
		t.Fatalf("err = %v, want it to wrap the edit error", err)
	}
	if !strings.Contains(err.Error(), "editing record") {
		t.Errorf("err = %v, want record context", err)
	}

	// The created record never got its final content.
	if len(store.order) != 1 {
		t.Fatalf("%d records created, want 1", len(store.order))
	}
	if content := store.recordContent(t, store.order[0]); content != chain.Placeholder {
		t.Errorf("record content = %q, want the placeholder", content)
	}
}

func TestUploadMissingSource(t *testing.T) {
	store := newFakeStore()
	client := newTestClient(t, store, 10, 10)

	_, err := client.Upload(t.Context(), filepath.Join(t.TempDir(), "absent.bin"), nil)
	if err == nil {
		t.Fatal("expected an error for a missing source")
	}
	if !strings.Contains(err.Error(), "splitting") {
		t.Errorf("err = %v, want splitting context", err)
	}
	if len(store.records) != 0 {
		t.Error("no records should be created when the split fails")
	}
}

func TestUploadConsumerGone(t *testing.T) {
	store := newFakeStore()
	client := newTestClient(t, store, 10, 10)
	source := writeSource(t, "orphaned.bin", sequence(25))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unbuffered channel that nobody reads: the first emit must take
	// the cancellation branch instead of blocking forever.
	progress := make(chan Progress)
	done := make(chan error, 1)
	go func() {
		_, err := client.Upload(ctx, source, progress)
		done <- err
	}()

	err := testutil.RequireReceive(t, done, 5*time.Second, "upload should return once the context is canceled")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	requireClosedProgress(t, progress)
}
