// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tomtom215/favefeed/internal/logging"
)

const defaultShutdownTimeout = 10 * time.Second

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	Serve(ln net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServerService binds addr and runs the ops HTTP server under suture.
// Binding happens inside Serve, so a port that is still taken fails the
// attempt and suture retries it with backoff.
//
//	server := &http.Server{Handler: api.NewRouter(handler)}
//	tree.AddAPIService(services.NewHTTPServerService("127.0.0.1:3857", server, 0))
type HTTPServerService struct {
	addr            string
	server          HTTPServer
	shutdownTimeout time.Duration
	bound           atomic.Pointer[string]
}

// NewHTTPServerService wraps server. Non-positive shutdownTimeout means 10s.
func NewHTTPServerService(addr string, server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	return &HTTPServerService{
		addr:            addr,
		server:          server,
		shutdownTimeout: shutdownTimeout,
	}
}

// Addr returns the address of the current listener, or "" when not bound.
func (h *HTTPServerService) Addr() string {
	if p := h.bound.Load(); p != nil {
		return *p
	}
	return ""
}

// Serve implements suture.Service. It returns ctx.Err() after a graceful
// shutdown.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", h.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", h.addr, err)
	}
	addr := ln.Addr().String()
	h.bound.Store(&addr)
	defer h.bound.Store(nil)

	logging.Info().Str("addr", addr).Msg("Ops server listening")

	done := make(chan error, 1)
	go func() {
		done <- h.server.Serve(ln)
	}()

	select {
	case err := <-done:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-done
		return ctx.Err()
	}
}

// String implements fmt.Stringer for suture logging.
func (h *HTTPServerService) String() string {
	return "http-server"
}
