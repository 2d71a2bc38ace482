// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

// Package discord is a minimal client for the slice of Discord's REST
// API that filament uses as a record store: creating, editing,
// fetching, deleting, and paginating channel messages, plus streaming
// attachment downloads from the CDN.
//
// The transfer layer consumes the [Store] interface rather than
// [Client] directly, so tests substitute an in-memory store and never
// touch the network.
//
// Discord's API is rate limited. The client keeps itself under the
// global limit with a token-bucket limiter and retries requests that
// still come back 429, waiting out the server-reported retry delay.
package discord
