// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

/*
Package supervisor runs the long-lived parts of favefeed under suture v4.

The watch command builds a two-layer tree:

	favefeed
	├── watch-layer
	│   └── watch.Service
	└── api-layer
	    └── services.HTTPServerService (when server.enabled)

Crashed services are restarted with suture's backoff. Supervisor events
(start, stop, panic, backoff) are logged through sutureslog, which is
bridged to zerolog by logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Watch.ShutdownGrace + 10*time.Second,
	})
	if err != nil {
	    return err
	}
	tree.AddWatchService(watchService)
	tree.AddAPIService(services.NewHTTPServerService(addr, server, 0))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Shutdown

Canceling the context passed to Serve stops every service. Each service gets
ShutdownTimeout to return; UnstoppedServiceReport names the ones that did
not.
*/
package supervisor
