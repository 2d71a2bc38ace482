// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides filament's standard CBOR encoding
// configuration.
//
// Filament uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: the Discord REST API and the
//     release endpoint queried by the update check.
//   - CBOR for local persistence: the staging manifest written next to
//     a file's extents.
//
// This package provides the shared encoding and decoding modes so both
// sides of a manifest round trip use identical configuration. The
// encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer encoding, no indefinite-length items. Same
// logical data always produces identical bytes, which keeps manifest
// rewrites idempotent.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types persisted as CBOR carry `cbor` struct tags; types that also
// cross a JSON interface carry `json` tags only (fxamacker/cbor reads
// them as fallback). Never use both tags on one field.
package codec
