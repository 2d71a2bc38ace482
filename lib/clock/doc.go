// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock interface parameter instead of calling
// time.Now, time.After, or time.Sleep directly. In production, Real()
// provides the standard library behavior. In tests, Fake() provides a
// deterministic clock that advances only when Advance is called.
//
// # Wiring Pattern
//
// Add a Clock field to structs that use time:
//
//	type Client struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production:
//
//	c := &Client{clock: clock.Real()}
//
// In tests:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	c := &Client{clock: fake}
//	// ... start goroutines ...
//	fake.WaitForTimers(1)         // wait for a sleep to register
//	fake.Advance(5 * time.Second) // fire it deterministically
//
// # FakeClock Synchronization
//
// When a goroutine calls Sleep or After on a FakeClock, it registers a
// pending waiter. Use WaitForTimers to block until a specific number
// of waiters are registered before calling Advance. This eliminates
// the race between registration and time advancement that plagues
// tests using real sleeps for synchronization.
package clock
