// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

// Package extent handles the local half of filament's chunked
// transfer: splitting a file into fixed-size extents, packing extents
// into record-sized batches, and joining extents back into the
// original file.
//
// An extent is one bounded slice of the source file, written to disk
// as "<name>.part<index>" with a decimal index counting from 0.
// Extents are immutable once written. Beside them the splitter writes
// a staging manifest ("<name>.manifest", CBOR) recording the source's
// name, size, extent geometry, and BLAKE3 checksum; the joiner uses it
// to verify a reassembled file and the uploader reuses its counts.
//
// Splitting and joining are pure local I/O. Remote concerns (chain
// records, the Discord store) live in lib/transfer and discord.
package extent
