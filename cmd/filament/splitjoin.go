// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/filament-archive/filament/cmd/filament/cli"
	"github.com/filament-archive/filament/lib/extent"
	"github.com/filament-archive/filament/lib/transfer"
)

// The split and join verbs work entirely on the local filesystem; they
// share the extent layer with upload and download but never touch the
// store.

type splitParams struct {
	ExtentSize int64
	OutputDir  string
	Verbose    bool
}

func splitCommand() *cli.Command {
	var params splitParams

	return &cli.Command{
		Name:    "split",
		Summary: "Split a file into extents locally",
		Usage:   "filament split <file> [flags]",
		Description: `Cut a file into extents on disk without uploading anything. Extents
are named "<file>.part<N>" and a manifest recording the extent count,
byte count, and checksum is written beside them for 'filament join'
to verify against.`,
		Examples: []cli.Example{
			{
				Description: "Split into 8 MB extents in ./extents",
				Command:     "filament split backup.tar.gz --extent-size 8000000 --output-dir ./extents",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("split", pflag.ContinueOnError)
			flagSet.Int64Var(&params.ExtentSize, "extent-size", extent.DefaultExtentSize, "extent size in bytes")
			flagSet.StringVar(&params.OutputDir, "output-dir", ".", "directory to write extents into")
			flagSet.BoolVarP(&params.Verbose, "verbose", "v", false, "enable debug logging")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return cli.Validation("file argument required\n\nUsage: filament split <file> [flags]")
			}

			logger := cli.NewCommandLogger(params.Verbose)
			renderer := newProgressRenderer(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), logger)
			result, err := extent.Split(args[0], params.OutputDir, params.ExtentSize,
				func(written, total int) error {
					fraction := 1.0
					if total > 0 {
						fraction = float64(written) / float64(total)
					}
					renderer.update(transfer.Progress{Label: "splitting", Fraction: fraction})
					return nil
				})
			renderer.finish()
			if err != nil {
				return err
			}

			fmt.Printf("wrote %d extents (%s) and %s\n",
				len(result.Extents),
				humanize.Bytes(uint64(result.Manifest.Size)),
				result.ManifestPath)
			return nil
		},
	}
}

type joinParams struct {
	Dir     string
	Output  string
	Keep    bool
	Verbose bool
}

func joinCommand() *cli.Command {
	var params joinParams

	return &cli.Command{
		Name:    "join",
		Summary: "Reassemble a file from local extents",
		Usage:   "filament join <name> [flags]",
		Description: `Concatenate the "<name>.part<N>" extents found in a directory back
into the original file. When a "<name>.manifest" is present the result
is verified against its extent count, byte count, and checksum.

Consumed extents and the manifest are removed after a successful join
unless --keep is set.`,
		Examples: []cli.Example{
			{
				Description: "Join extents from the current directory",
				Command:     "filament join backup.tar.gz",
			},
			{
				Description: "Join from a staging directory, keeping the extents",
				Command:     "filament join backup.tar.gz --dir ./extents --keep",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("join", pflag.ContinueOnError)
			flagSet.StringVar(&params.Dir, "dir", ".", "directory containing the extents")
			flagSet.StringVarP(&params.Output, "output", "o", "", "destination path (default: <dir>/<name>)")
			flagSet.BoolVar(&params.Keep, "keep", false, "keep extents and manifest after joining")
			flagSet.BoolVarP(&params.Verbose, "verbose", "v", false, "enable debug logging")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return cli.Validation("name argument required\n\nUsage: filament join <name> [flags]")
			}

			logger := cli.NewCommandLogger(params.Verbose)
			renderer := newProgressRenderer(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), logger)
			result, err := extent.Join(params.Dir, args[0], params.Output,
				func(done, total int) error {
					renderer.update(transfer.Progress{
						Label:    "joining",
						Fraction: float64(done) / float64(total),
					})
					return nil
				})
			renderer.finish()
			if err != nil {
				return err
			}

			if !params.Keep {
				for _, part := range result.Extents {
					if err := os.Remove(part); err != nil {
						return fmt.Errorf("removing %s: %w", part, err)
					}
				}
				if result.ManifestPath != "" {
					if err := os.Remove(result.ManifestPath); err != nil {
						return fmt.Errorf("removing %s: %w", result.ManifestPath, err)
					}
				}
			}

			verification := "unverified: no manifest"
			if result.Verified {
				verification = "verified"
			}
			fmt.Printf("joined %s: %s from %d extents (%s)\n",
				result.Path, humanize.Bytes(uint64(result.Size)), len(result.Extents), verification)
			return nil
		},
	}
}
