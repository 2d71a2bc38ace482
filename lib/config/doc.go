// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

// Package config stores filament's persistent settings: the bot token
// and the container channel.
//
// Settings live in a single YAML file at
// <user config dir>/filament/config.yaml, overridable with the
// FILAMENT_CONFIG environment variable. The file has two levels: a
// global table and per-scope tables keyed by working-directory path,
// so one machine can default to a personal channel while a project
// directory pins its own. [File.Resolve] checks the scope for the
// current directory first and falls back to the global table.
//
// Loading a missing file yields an empty config; the file only comes
// into existence through [Save], which writes atomically with 0600
// permissions because the file holds the bot token.
//
// Key names are validated ([KeyToken], [KeyChannel]); resolution of
// flag and environment overrides on top of this file is the CLI's
// concern, not this package's.
package config
