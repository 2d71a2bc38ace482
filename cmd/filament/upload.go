// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/filament-archive/filament/cmd/filament/cli"
	"github.com/filament-archive/filament/lib/extent"
	"github.com/filament-archive/filament/lib/transfer"
)

type uploadParams struct {
	connection
	ExtentSize int64
	BatchLimit int
	StagingDir string
}

func uploadCommand() *cli.Command {
	var params uploadParams

	return &cli.Command{
		Name:    "upload",
		Summary: "Upload a file to the container channel",
		Usage:   "filament upload <file> [flags]",
		Description: `Split a file into extents, upload them as record attachments, and
link the records into a chain.

The head record id is printed to stdout on success; it is the handle
for 'filament download' and 'filament delete'. Everything else goes
to stderr so the id stays pipeable.`,
		Examples: []cli.Example{
			{
				Description: "Upload with settings from config",
				Command:     "filament upload backup.tar.gz",
			},
			{
				Description: "Upload to an explicit channel with smaller extents",
				Command:     "filament upload backup.tar.gz --channel 1295000000000000000 --extent-size 8000000",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("upload", pflag.ContinueOnError)
			params.addFlags(flagSet)
			flagSet.Int64Var(&params.ExtentSize, "extent-size", extent.DefaultExtentSize, "extent size in bytes")
			flagSet.IntVar(&params.BatchLimit, "batch-limit", extent.BatchLimit, "extents per record")
			flagSet.StringVar(&params.StagingDir, "staging-dir", "", "directory for staged extents (default: system temp)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return cli.Validation("file argument required\n\nUsage: filament upload <file> [flags]")
			}
			sourcePath := args[0]
			if _, err := os.Stat(sourcePath); err != nil {
				return cli.NotFound("reading %s: %v", sourcePath, err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := cli.NewCommandLogger(params.Verbose)
			client, err := params.transferClient(logger, transfer.Options{
				ExtentSize: params.ExtentSize,
				BatchLimit: params.BatchLimit,
				StagingDir: params.StagingDir,
			})
			if err != nil {
				return err
			}

			var result *transfer.UploadResult
			err = runWithProgress(logger, func(progress chan<- transfer.Progress) error {
				var uploadErr error
				result, uploadErr = client.Upload(ctx, sourcePath, progress)
				return uploadErr
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "uploaded %s: %s in %d extents across %d records\n",
				result.Name, humanize.Bytes(uint64(result.Size)), result.Extents, len(result.Records))
			fmt.Println(result.Head)
			return nil
		},
	}
}
