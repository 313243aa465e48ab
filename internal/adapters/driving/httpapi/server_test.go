package httpapi

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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// freePort reserves an ephemeral port and releases it for the server.
func freePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestNewServer_RequiresHandler(t *testing.T) {
	_, err := NewServer(":8000", nil, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler")
}

func TestNewServer_DefaultAddr(t *testing.T) {
	srv, err := NewServer("", http.NewServeMux(), discardLogger())
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, srv.httpServer.Addr)
}

func TestServer_ServesAndShutsDownOnCancel(t *testing.T) {
	h := newTestHandler(t, &mockGenerator{}, &mockStore{}, nil)
	addr := freePort(t)

	srv, err := NewServer(addr, h.Routes(), discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	url := "http://" + addr + "/api/v1/system/live"
	var status int
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		status = resp.StatusCode
		return true
	}, 5*time.Second, 20*time.Millisecond, "server never came up")
	assert.Equal(t, http.StatusOK, status)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_RunFailsOnBusyPort(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	srv, err := NewServer(l.Addr().String(), http.NewServeMux(), discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.Error(t, srv.Run(ctx))
}
