// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/filament-archive/filament/cmd/filament/cli"
	"github.com/filament-archive/filament/lib/extent"
	"github.com/filament-archive/filament/lib/transfer"
	"github.com/filament-archive/filament/lib/transferui"
)

type browseParams struct {
	connection
	ExtentSize int64
	BatchLimit int
	StagingDir string
	LogOutput  string
}

func browseCommand() *cli.Command {
	var params browseParams

	return &cli.Command{
		Name:    "browse",
		Summary: "Browse the container in a terminal UI",
		Usage:   "filament browse [flags]",
		Description: `Open an interactive catalog of the container's stored files. The
catalog is a navigable table: u uploads a local file, d downloads the
selection into the current directory, x deletes the selection after
confirmation, r reloads, q quits.

The UI takes over the terminal, so logging is off unless --log-output
routes it to a file.`,
		Examples: []cli.Example{
			{
				Description: "Browse the configured container",
				Command:     "filament browse",
			},
			{
				Description: "Browse with debug logs captured to a file",
				Command:     "filament browse --log-output /tmp/filament.log",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("browse", pflag.ContinueOnError)
			params.addFlags(flagSet)
			flagSet.Int64Var(&params.ExtentSize, "extent-size", extent.DefaultExtentSize, "extent size in bytes for uploads")
			flagSet.IntVar(&params.BatchLimit, "batch-limit", extent.BatchLimit, "extents per record for uploads")
			flagSet.StringVar(&params.StagingDir, "staging-dir", "", "directory for upload staging (default: system temp)")
			flagSet.StringVar(&params.LogOutput, "log-output", "", "write JSON log records to this file")
			return flagSet
		},
		Run: func(args []string) error {
			// Anything written to stderr would corrupt the alt-screen
			// display, so background logging goes to a file or nowhere.
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			if params.LogOutput != "" {
				file, err := os.Create(params.LogOutput)
				if err != nil {
					return cli.Validation("cannot open log file %s: %v", params.LogOutput, err)
				}
				defer file.Close()
				logger = slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}

			client, err := params.transferClient(logger, transfer.Options{
				ExtentSize: params.ExtentSize,
				BatchLimit: params.BatchLimit,
				StagingDir: params.StagingDir,
			})
			if err != nil {
				return err
			}

			model := transferui.NewModel(client)
			program := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("running UI: %w", err)
			}
			return nil
		},
	}
}
