// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/filament-archive/filament/cmd/filament/cli"
	"github.com/filament-archive/filament/lib/version"
)

// root builds the complete filament command tree.
func root() *cli.Command {
	return &cli.Command{
		Name: "filament",
		Description: `Filament: file archival over a Discord channel.

Files are split into extents, uploaded as record attachments, and
linked into chains that can be listed, downloaded, and deleted later.
The channel and bot token come from flags, environment variables
(FILAMENT_TOKEN, FILAMENT_CHANNEL), or 'filament config'.`,
		Subcommands: []*cli.Command{
			uploadCommand(),
			downloadCommand(),
			deleteCommand(),
			listCommand(),
			browseCommand(),
			splitCommand(),
			joinCommand(),
			configCommand(),
			updateCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("filament %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Store the channel for this directory",
				Command:     "filament config set channel 1295000000000000000",
			},
			{
				Description: "Upload a file (prints the head record id)",
				Command:     "filament upload backup.tar.gz",
			},
			{
				Description: "List stored files",
				Command:     "filament list",
			},
			{
				Description: "Download by head record id",
				Command:     "filament download 1295443334160384161",
			},
			{
				Description: "Browse the channel interactively",
				Command:     "filament browse",
			},
			{
				Description: "Split a file locally without uploading",
				Command:     "filament split backup.tar.gz --output-dir ./extents",
			},
		},
	}
}
