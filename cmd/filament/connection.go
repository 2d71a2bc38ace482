// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/filament-archive/filament/cmd/filament/cli"
	"github.com/filament-archive/filament/discord"
	"github.com/filament-archive/filament/lib/config"
	"github.com/filament-archive/filament/lib/transfer"
)

// connection carries the flags shared by every command that talks to
// the store, and resolves them against the environment and the config
// file.
type connection struct {
	Token   string
	Channel string
	Verbose bool
}

func (c *connection) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.Token, "token", "", "bot token (overrides FILAMENT_TOKEN and config)")
	flagSet.StringVar(&c.Channel, "channel", "", "container channel id (overrides FILAMENT_CHANNEL and config)")
	flagSet.BoolVarP(&c.Verbose, "verbose", "v", false, "enable debug logging")
}

// resolveSetting applies the flag > environment > scoped config >
// global config precedence for a single setting. The scope is the
// working directory, so a project directory can pin its own channel.
func resolveSetting(flagValue, envName, key string, file *config.File, scope string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(envName); env != "" {
		return env
	}
	value, _, _ := file.Resolve(scope, key)
	return value
}

// resolve produces the token and channel for a store-backed command,
// or a validation error telling the user how to configure the missing
// setting.
func (c *connection) resolve() (string, discord.ChannelID, error) {
	file, err := config.Load()
	if err != nil {
		return "", 0, fmt.Errorf("loading config: %w", err)
	}
	scope, err := os.Getwd()
	if err != nil {
		return "", 0, fmt.Errorf("resolving working directory: %w", err)
	}

	token := resolveSetting(c.Token, "FILAMENT_TOKEN", config.KeyToken, file, scope)
	if token == "" {
		return "", 0, cli.Validation("no bot token configured").
			WithHint("Run 'filament config set token <token>' or set FILAMENT_TOKEN.")
	}

	channelText := resolveSetting(c.Channel, "FILAMENT_CHANNEL", config.KeyChannel, file, scope)
	if channelText == "" {
		return "", 0, cli.Validation("no channel configured").
			WithHint("Run 'filament config set channel <id>' or set FILAMENT_CHANNEL.")
	}
	channel, err := discord.ParseChannelID(channelText)
	if err != nil {
		return "", 0, cli.Validation("invalid channel id %q: %v", channelText, err)
	}

	return token, channel, nil
}

// transferClient builds a transfer client over a Discord store from
// the resolved connection settings. The caller supplies any transfer
// options beyond Store, Channel, and Logger.
func (c *connection) transferClient(logger *slog.Logger, opts transfer.Options) (*transfer.Client, error) {
	token, channel, err := c.resolve()
	if err != nil {
		return nil, err
	}

	store, err := discord.NewClient(discord.ClientConfig{
		Token:  token,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	opts.Store = store
	opts.Channel = channel
	opts.Logger = logger
	return transfer.New(opts)
}
