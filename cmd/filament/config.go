// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/filament-archive/filament/cmd/filament/cli"
	"github.com/filament-archive/filament/lib/config"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Summary: "Manage stored settings (token, channel)",
		Description: `Read and write the filament config file.

Settings live at two levels: scoped to the working directory they were
set from, and global. Commands resolve a setting by checking the scope
for the current directory first, then the global table. 'set' and
'unset' target the current directory's scope unless --global is given.

The file lives at <user config dir>/filament/config.yaml (override
with FILAMENT_CONFIG) and is written with 0600 permissions because it
holds the bot token.`,
		Subcommands: []*cli.Command{
			configGetCommand(),
			configSetCommand(),
			configUnsetCommand(),
			configShowCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Set the token once for every directory",
				Command:     "filament config set token $MY_BOT_TOKEN --global",
			},
			{
				Description: "Pin this project to its own channel",
				Command:     "filament config set channel 1295000000000000000",
			},
			{
				Description: "See where the channel value comes from",
				Command:     "filament config get channel",
			},
		},
	}
}

// scopeFor maps the --global flag to a config scope: the empty scope
// is the global table, anything else is the literal working directory.
// The second return is the level name for messages.
func scopeFor(global bool) (string, string, error) {
	if global {
		return "", string(config.LevelGlobal), nil
	}
	scope, err := os.Getwd()
	if err != nil {
		return "", "", fmt.Errorf("resolving working directory: %w", err)
	}
	return scope, string(config.LevelScoped), nil
}

func configGetCommand() *cli.Command {
	return &cli.Command{
		Name:    "get",
		Summary: "Print a resolved setting",
		Usage:   "filament config get <key>",
		Description: `Resolve a key against the current directory's scope and the global
table, printing the value to stdout. Which level supplied it goes to
stderr so the value stays pipeable.`,
		Run: func(args []string) error {
			if len(args) == 0 {
				return cli.Validation("key argument required\n\nUsage: filament config get <key>")
			}
			key := args[0]
			if err := config.ValidateKey(key); err != nil {
				return cli.Validation("%v", err)
			}

			file, err := config.Load()
			if err != nil {
				return err
			}
			scope, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("resolving working directory: %w", err)
			}

			value, level, ok := file.Resolve(scope, key)
			if !ok {
				return cli.NotFound("%s is not set", key).
					WithHint("Run 'filament config set %s <value>'.", key)
			}
			fmt.Fprintf(os.Stderr, "# from the %s table\n", level)
			fmt.Println(value)
			return nil
		},
	}
}

func configSetCommand() *cli.Command {
	var global bool

	return &cli.Command{
		Name:    "set",
		Summary: "Store a setting",
		Usage:   "filament config set <key> <value> [flags]",
		Description: `Store a key=value setting. By default the value is scoped to the
current working directory; --global stores it for every directory
without a scoped override.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("set", pflag.ContinueOnError)
			flagSet.BoolVar(&global, "global", false, "store in the global table")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) < 2 {
				return cli.Validation("key and value arguments required\n\nUsage: filament config set <key> <value> [flags]")
			}

			scope, levelName, err := scopeFor(global)
			if err != nil {
				return err
			}
			path, err := config.Path()
			if err != nil {
				return err
			}
			file, err := config.LoadFile(path)
			if err != nil {
				return err
			}
			if err := file.Set(scope, args[0], args[1]); err != nil {
				return cli.Validation("%v", err)
			}
			if err := config.Save(path, file); err != nil {
				return err
			}

			// The value is not echoed: it may be the bot token.
			fmt.Printf("set %s (%s)\n", args[0], levelName)
			return nil
		},
	}
}

func configUnsetCommand() *cli.Command {
	var global bool

	return &cli.Command{
		Name:    "unset",
		Summary: "Remove a setting from one level",
		Usage:   "filament config unset <key> [flags]",
		Description: `Remove a key from the current directory's scope, or from the global
table with --global. Removing a scoped value exposes the global one
again.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("unset", pflag.ContinueOnError)
			flagSet.BoolVar(&global, "global", false, "remove from the global table")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return cli.Validation("key argument required\n\nUsage: filament config unset <key> [flags]")
			}
			key := args[0]
			if err := config.ValidateKey(key); err != nil {
				return cli.Validation("%v", err)
			}

			scope, levelName, err := scopeFor(global)
			if err != nil {
				return err
			}
			path, err := config.Path()
			if err != nil {
				return err
			}
			file, err := config.LoadFile(path)
			if err != nil {
				return err
			}
			if !file.Unset(scope, key) {
				return cli.NotFound("%s is not set in the %s table", key, levelName)
			}
			if err := config.Save(path, file); err != nil {
				return err
			}

			fmt.Printf("unset %s (%s)\n", key, levelName)
			return nil
		},
	}
}

func configShowCommand() *cli.Command {
	return &cli.Command{
		Name:    "show",
		Summary: "Print the whole config file",
		Usage:   "filament config show",
		Run: func(args []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			file, err := config.LoadFile(path)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "# %s\n", path)
			data, err := yaml.Marshal(file)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			os.Stdout.Write(data)
			return nil
		},
	}
}
