// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/filament-archive/filament/cmd/filament/cli"
	"github.com/filament-archive/filament/lib/transfer"
)

type listParams struct {
	connection
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List files stored in the container channel",
		Usage:   "filament list [flags]",
		Description: `Scan the container channel for chain head records and print one line
per stored file, newest first. The RECORD column is the head record id
accepted by 'filament download' and 'filament delete'.`,
		Examples: []cli.Example{
			{
				Description: "List stored files",
				Command:     "filament list",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			params.addFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := cli.NewCommandLogger(params.Verbose)
			client, err := params.transferClient(logger, transfer.Options{})
			if err != nil {
				return err
			}

			entries, err := client.List(ctx)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No files stored.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(writer, "NAME\tSIZE\tEXTENTS\tRECORD\n")
			for _, entry := range entries {
				// The lister guarantees a name; size and extent count
				// can still be absent on a record written by hand.
				size := "?"
				if entry.Record.Size != nil {
					size = humanize.Bytes(*entry.Record.Size)
				}
				extents := "?"
				if entry.Record.Extents != nil {
					extents = strconv.FormatUint(*entry.Record.Extents, 10)
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
					*entry.Record.Name, size, extents, entry.ID)
			}
			writer.Flush()
			return nil
		},
	}
}
