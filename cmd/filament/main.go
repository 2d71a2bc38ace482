// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/filament-archive/filament/cmd/filament/cli"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like update) return an
		// ExitError with the desired exit code. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		// Usage mistakes exit 2, everything else 1, so scripts can
		// tell "fix the invocation" from "the operation failed".
		var toolErr *cli.ToolError
		if errors.As(err, &toolErr) && toolErr.Category == cli.CategoryValidation {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	return root().Execute(os.Args[1:])
}
