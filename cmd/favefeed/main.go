// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

// Command favefeed ingests a favorites export bundle into the local video
// library.
//
//	favefeed import           one-shot reconciliation of the whole bundle
//	favefeed watch            ingest new downloads as they land
//	favefeed status           print recent sync runs and library counts
//
// Configuration comes from defaults, an optional YAML file (--config or
// CONFIG_PATH) and environment variables; MYFAVETT_EXPORT_PATH is required.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
