// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

// fakeServer blocks in Serve until Shutdown unless serveErr is set.
type fakeServer struct {
	serveErr    error
	shutdownErr error
	started     chan struct{}
	stop        chan struct{}
	shutdowns   atomic.Int32
}

func newFakeServer() *fakeServer {
	return &fakeServer{started: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (f *fakeServer) Serve(ln net.Listener) error {
	defer ln.Close()
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.serveErr != nil {
		return f.serveErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	if f.shutdowns.Add(1) == 1 {
		close(f.stop)
	}
	return f.shutdownErr
}

func TestNewHTTPServerService_Timeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want time.Duration
	}{
		{0, 10 * time.Second},
		{-time.Second, 10 * time.Second},
		{3 * time.Second, 3 * time.Second},
	}
	for _, tt := range tests {
		svc := NewHTTPServerService("127.0.0.1:0", newFakeServer(), tt.in)
		if svc.shutdownTimeout != tt.want {
			t.Errorf("NewHTTPServerService(%v) timeout = %v, want %v", tt.in, svc.shutdownTimeout, tt.want)
		}
	}
	if got := NewHTTPServerService("", newFakeServer(), 0).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	t.Run("graceful shutdown", func(t *testing.T) {
		server := newFakeServer()
		svc := NewHTTPServerService("127.0.0.1:0", server, time.Second)
		err := serveUntilCanceled(t, svc, server)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
		if server.shutdowns.Load() != 1 {
			t.Errorf("Shutdown called %d times", server.shutdowns.Load())
		}
		if svc.Addr() != "" {
			t.Errorf("Addr() = %q after shutdown, want empty", svc.Addr())
		}
	})

	t.Run("serve failure", func(t *testing.T) {
		server := newFakeServer()
		server.serveErr = errors.New("accept: too many open files")
		err := NewHTTPServerService("127.0.0.1:0", server, time.Second).Serve(context.Background())
		if !errors.Is(err, server.serveErr) {
			t.Errorf("Serve() error = %v, want %v", err, server.serveErr)
		}
	})

	t.Run("shutdown failure", func(t *testing.T) {
		server := newFakeServer()
		server.shutdownErr = errors.New("connections still open")
		err := serveUntilCanceled(t, NewHTTPServerService("127.0.0.1:0", server, time.Second), server)
		if !errors.Is(err, server.shutdownErr) {
			t.Errorf("Serve() error = %v, want %v", err, server.shutdownErr)
		}
	})
}

func TestHTTPServerService_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	server := newFakeServer()
	err = NewHTTPServerService(ln.Addr().String(), server, time.Second).Serve(context.Background())
	if err == nil || !strings.Contains(err.Error(), "listen on") {
		t.Fatalf("Serve() error = %v, want listen failure", err)
	}
	select {
	case <-server.started:
		t.Error("server started without a listener")
	default:
	}
}

func TestHTTPServerService_RealServer(t *testing.T) {
	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
	}
	svc := NewHTTPServerService("127.0.0.1:0", server, time.Second)

	sup := suture.New("test", suture.Spec{Timeout: 2 * time.Second})
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for svc.Addr() == "" {
		if time.Now().After(deadline) {
			t.Fatal("server never bound")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Get("http://" + svc.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	<-errCh
}

func serveUntilCanceled(t *testing.T, svc *HTTPServerService, server *fakeServer) error {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	select {
	case <-server.started:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}
	cancel()

	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
		return nil
	}
}
