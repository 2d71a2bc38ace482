// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for filament packages.
//
// [RequireReceive], [RequireSend], and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls. Progress
// channel tests throughout the transfer packages use them.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation. Use it instead of time.Now() when tests need unique
// file names or record content distinguishable in a shared fake store.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no filament-internal dependencies.
package testutil
