// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the filament CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in cmd/filament and
// dispatched via [Command.Execute], which handles flag parsing, subcommand
// routing, and structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// Commands report failures as ordinary errors. Two error types get special
// treatment from the binary's top-level handler:
//
//   - [ToolError] carries a category and an optional remediation hint.
//     The category selects the process exit code; the hint is appended to
//     the printed message.
//
//   - [ExitError] carries a bare exit code for commands that have already
//     written their own output and only need a non-zero exit.
//
// [NewCommandLogger] builds the slog logger commands hand to library code:
// text output when stderr is a terminal, JSON when it is piped.
package cli
