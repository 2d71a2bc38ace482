// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides shared terminal user interface components for
// filament's interactive surfaces. Built on bubbletea (Elm
// architecture), it holds the pieces that are not specific to any one
// view: the color theme and a proportional scrollbar renderer.
//
// The catalog browser imports this package for consistent look and
// behavior; it owns its own data flow, layout, and domain rendering.
package tui
