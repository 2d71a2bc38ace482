// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/filament-archive/filament/cmd/filament/cli"
	"github.com/filament-archive/filament/discord"
	"github.com/filament-archive/filament/lib/extent"
	"github.com/filament-archive/filament/lib/transfer"
)

type deleteParams struct {
	connection
	BatchLimit int
}

func deleteCommand() *cli.Command {
	var params deleteParams

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a stored file by its head record id",
		Usage:   "filament delete <record-id> [flags]",
		Description: `Walk the chain starting at the given head record and delete every
record in it. Deletion is permanent; there is no confirmation prompt.`,
		Examples: []cli.Example{
			{
				Description: "Delete a stored file",
				Command:     "filament delete 1295443334160384161",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("delete", pflag.ContinueOnError)
			params.addFlags(flagSet)
			flagSet.IntVar(&params.BatchLimit, "batch-limit", extent.BatchLimit, "extents per record, used to estimate progress")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return cli.Validation("record id argument required\n\nUsage: filament delete <record-id> [flags]")
			}
			head, err := discord.ParseRecordID(args[0])
			if err != nil {
				return cli.Validation("invalid record id %q: %v", args[0], err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := cli.NewCommandLogger(params.Verbose)
			client, err := params.transferClient(logger, transfer.Options{
				BatchLimit: params.BatchLimit,
			})
			if err != nil {
				return err
			}

			var result *transfer.DeleteResult
			err = runWithProgress(logger, func(progress chan<- transfer.Progress) error {
				var deleteErr error
				result, deleteErr = client.Delete(ctx, head, progress)
				return deleteErr
			})
			if err != nil {
				return err
			}

			fmt.Printf("deleted %d records\n", result.Records)
			return nil
		},
	}
}
