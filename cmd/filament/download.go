// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/filament-archive/filament/cmd/filament/cli"
	"github.com/filament-archive/filament/discord"
	"github.com/filament-archive/filament/lib/transfer"
)

type downloadParams struct {
	connection
	Output string
}

func downloadCommand() *cli.Command {
	var params downloadParams

	return &cli.Command{
		Name:    "download",
		Summary: "Download a file by its head record id",
		Usage:   "filament download <record-id> [flags]",
		Description: `Walk the chain starting at the given head record and reassemble the
file. The destination is the file name stored in the head, or --output.

A failed download leaves the partial file in place for inspection.`,
		Examples: []cli.Example{
			{
				Description: "Download to the stored file name",
				Command:     "filament download 1295443334160384161",
			},
			{
				Description: "Download to an explicit path",
				Command:     "filament download 1295443334160384161 --output /tmp/restored.tar.gz",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("download", pflag.ContinueOnError)
			params.addFlags(flagSet)
			flagSet.StringVarP(&params.Output, "output", "o", "", "destination path (default: name stored in the head record)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return cli.Validation("record id argument required\n\nUsage: filament download <record-id> [flags]")
			}
			head, err := discord.ParseRecordID(args[0])
			if err != nil {
				return cli.Validation("invalid record id %q: %v", args[0], err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := cli.NewCommandLogger(params.Verbose)
			client, err := params.transferClient(logger, transfer.Options{})
			if err != nil {
				return err
			}

			var result *transfer.DownloadResult
			err = runWithProgress(logger, func(progress chan<- transfer.Progress) error {
				var downloadErr error
				result, downloadErr = client.Download(ctx, head, params.Output, progress)
				return downloadErr
			})
			if err != nil {
				return err
			}

			fmt.Printf("downloaded %s: %s from %d records\n",
				result.Path, humanize.Bytes(uint64(result.Size)), result.Records)
			return nil
		},
	}
}
