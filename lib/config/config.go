// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPath is the environment variable that overrides the config file
// location.
const EnvPath = "FILAMENT_CONFIG"

// Valid setting keys.
const (
	// KeyToken is the bot token used to authenticate against the
	// store.
	KeyToken = "token"

	// KeyChannel is the container channel id transfers address.
	KeyChannel = "channel"
)

var validKeys = []string{KeyToken, KeyChannel}

// ValidateKey rejects key names this package does not know, naming
// the valid ones.
func ValidateKey(key string) error {
	if slices.Contains(validKeys, key) {
		return nil
	}
	return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(validKeys, ", "))
}

// Level identifies which table supplied a resolved value.
type Level string

const (
	// LevelScoped means the value came from the table for the
	// caller's working directory.
	LevelScoped Level = "scoped"

	// LevelGlobal means the value came from the global table.
	LevelGlobal Level = "global"
)

// File is the on-disk configuration: a global key/value table and
// per-scope tables keyed by literal working-directory path.
type File struct {
	Global map[string]string            `yaml:"global,omitempty"`
	Scopes map[string]map[string]string `yaml:"scopes,omitempty"`
}

// Path returns the config file location: the FILAMENT_CONFIG
// environment variable when set, otherwise
// <user config dir>/filament/config.yaml.
func Path() (string, error) {
	if path := os.Getenv(EnvPath); path != "" {
		return path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(dir, "filament", "config.yaml"), nil
}

// Load reads the config from [Path]. A missing file yields an empty
// config, not an error: nothing has been configured yet.
func Load() (*File, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the config at an explicit path. A missing file
// yields an empty config.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &f, nil
}

// Save writes f to path atomically via a temp file in the same
// directory. The file carries 0600 permissions (os.CreateTemp's
// default) because it holds the bot token; parent directories are
// created as needed.
func Save(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp config: %w", err)
	}
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing config %s: %w", path, err)
	}
	success = true
	return nil
}

// Resolve looks key up in the table for scope, then in the global
// table. The returned level reports which table supplied the value.
func (f *File) Resolve(scope, key string) (string, Level, bool) {
	if table, ok := f.Scopes[scope]; ok {
		if value, ok := table[key]; ok {
			return value, LevelScoped, true
		}
	}
	if value, ok := f.Global[key]; ok {
		return value, LevelGlobal, true
	}
	return "", "", false
}

// Set stores key=value in the table for scope, or in the global table
// when scope is empty. Unknown keys are rejected.
func (f *File) Set(scope, key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if scope == "" {
		if f.Global == nil {
			f.Global = make(map[string]string)
		}
		f.Global[key] = value
		return nil
	}
	if f.Scopes == nil {
		f.Scopes = make(map[string]map[string]string)
	}
	table := f.Scopes[scope]
	if table == nil {
		table = make(map[string]string)
		f.Scopes[scope] = table
	}
	table[key] = value
	return nil
}

// Unset removes key from the table for scope (global when scope is
// empty) and reports whether it was present. A scope table emptied by
// the removal is pruned so the file stays tidy.
func (f *File) Unset(scope, key string) bool {
	if scope == "" {
		if _, ok := f.Global[key]; !ok {
			return false
		}
		delete(f.Global, key)
		return true
	}
	table := f.Scopes[scope]
	if _, ok := table[key]; !ok {
		return false
	}
	delete(table, key)
	if len(table) == 0 {
		delete(f.Scopes, scope)
	}
	return true
}
