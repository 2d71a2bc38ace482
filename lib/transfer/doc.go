// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

// Package transfer drives file transfers against a record store.
//
// A stored file is a chain of remote records: each record carries up
// to a batch limit of extents as attachments and a content field
// encoding chain metadata (lib/chain). Upload splits a local file into
// extents (lib/extent), creates one record per batch, then links the
// records; download walks the chain and reassembles the file; delete
// walks the chain removing records; List pages through a container and
// reports the chain heads in it.
//
// Operations report progress as ordered events on a caller-supplied
// channel and close it on return. Sends select against context
// cancellation, so abandoning the consumer cancels the transfer at the
// next event rather than wedging it.
package transfer
