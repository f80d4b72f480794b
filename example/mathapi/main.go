// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command mathapi serves a small arithmetic api built from trellis routes.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/z5labs/trellis/example/mathapi/cli"
)

func main() {
	err := cli.NewRootCmd().ExecuteContext(context.Background())
	if err == nil {
		return
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	log.Error("failed to run mathapi", slog.Any("error", err))
	os.Exit(1)
}
