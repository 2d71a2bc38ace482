// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/filament-archive/filament/cmd/filament/cli"
	"github.com/filament-archive/filament/lib/version"
)

type updateParams struct {
	Endpoint string
	Timeout  time.Duration
}

func updateCommand() *cli.Command {
	var params updateParams

	return &cli.Command{
		Name:    "update",
		Summary: "Check for a newer release",
		Usage:   "filament update [flags]",
		Description: `Query the release endpoint for the latest published version and
compare it against this build. Development builds never report an
available update.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("update", pflag.ContinueOnError)
			flagSet.StringVar(&params.Endpoint, "endpoint", version.DefaultReleaseEndpoint, "release endpoint URL")
			flagSet.DurationVar(&params.Timeout, "timeout", 10*time.Second, "request timeout")
			return flagSet
		},
		Run: func(args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, params.Timeout)
			defer cancel()

			release, err := version.CheckLatest(ctx, nil, params.Endpoint)
			if err != nil {
				return cli.Transient("checking for updates: %v", err)
			}

			fmt.Printf("current: %s\n", version.Short())
			fmt.Printf("latest:  %s\n", release.TagName)
			if release.NewerThan(version.Short()) {
				fmt.Printf("\nA newer release is available: %s\n", release.URL)
			} else {
				fmt.Println("\nUp to date.")
			}
			return nil
		},
	}
}
