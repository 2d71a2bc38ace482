// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

// Package transferui implements a terminal user interface for browsing
// a filament container. Built on bubbletea (Elm architecture), it
// shows the stored-file catalog as a navigable table and drives
// uploads, downloads, and deletes against a [transfer.Client].
//
// Generic UI components (theme, scrollbar) live in [tui] and are
// re-exported here for internal use. Everything specific to file
// transfer (catalog rows, key bindings, the progress bridge) stays in
// this package.
//
// A transfer runs on a background goroutine owned by the bubbletea
// runtime; its progress channel is bridged into the message loop by a
// command that blocks for one event, delivers it, and is re-armed by
// Update until the operation closes the channel. At most one transfer
// runs at a time, and only Update mutates UI-visible state.
//
// Data flow:
//
//	[container via transfer.Client]
//	        | (catalog / progress / done messages)
//	    [Model] <- bubbletea event loop
//	        |
//	  [terminal output]
package transferui
