package cli

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobforge/jobforge/internal/adapters/driven/config/file"
)

func freePort(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func runServeInBackground(t *testing.T, ctx context.Context, args ...string) (*bytes.Buffer, chan error) {
	t.Helper()

	resetCommandContexts(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"serve"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	done := make(chan error, 1)
	go func() {
		done <- rootCmd.ExecuteContext(ctx)
	}()
	return buf, done
}

func waitForServer(t *testing.T, addr string) {
	t.Helper()

	url := fmt.Sprintf("http://%s/api/v1/system/live", addr)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close() //nolint:errcheck // test probe
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
}

func TestServeCmd_NotConfigured(t *testing.T) {
	stubRuntime(t)

	_, err := executeCommand(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestServeCmd_ServesUntilCancelled(t *testing.T) {
	stubRuntime(t)
	generationService = &mockGenerationService{result: testGenerationResult()}
	fragmentStore = &fakeFragmentStore{count: 3}

	addr := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	buf, done := runServeInBackground(t, ctx, "--addr", addr)
	waitForServer(t, addr)

	resp, err := http.Get(fmt.Sprintf("http://%s/api/v1/system/ready", addr))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck // test probe
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after cancel")
	}

	assert.Contains(t, buf.String(), "API listening on "+addr)
}

func TestServeCmd_WatchPromptsNeedsPromptStore(t *testing.T) {
	stubRuntime(t)
	generationService = &mockGenerationService{result: testGenerationResult()}
	fragmentStore = &fakeFragmentStore{count: 1}

	_, err := executeCommand(t, "serve", "--watch-prompts", "--addr", freePort(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompts_path")
}

func TestServeCmd_WatchPromptsServes(t *testing.T) {
	stubRuntime(t)
	generationService = &mockGenerationService{result: testGenerationResult()}
	fragmentStore = &fakeFragmentStore{count: 1}

	store, err := file.NewPromptStore(t.TempDir(), map[string]string{"analyzer_system": "base"})
	require.NoError(t, err)
	promptFiles = store

	addr := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, done := runServeInBackground(t, ctx, "--watch-prompts", "--addr", addr)
	waitForServer(t, addr)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after cancel")
	}
}

func TestServeCmd_DefaultsToSettingsAddr(t *testing.T) {
	stubRuntime(t)
	generationService = &mockGenerationService{result: testGenerationResult()}
	fragmentStore = &fakeFragmentStore{count: 1}

	addr := freePort(t)
	settings.Server.Addr = addr

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, done := runServeInBackground(t, ctx)
	waitForServer(t, addr)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after cancel")
	}
}
