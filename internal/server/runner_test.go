package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunner_ServesAndShutsDown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	// Port 0 binds an ephemeral port.
	r := NewRunner(mux, Config{Host: "127.0.0.1", Port: 0}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	addr, err := r.Addr(context.Background())
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr.String() + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunner_ListenError(t *testing.T) {
	// Occupy a port so the runner cannot bind it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	r := NewRunner(http.NewServeMux(), Config{Host: "127.0.0.1", Port: port}, testLogger())

	err = r.Run(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}
