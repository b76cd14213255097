// cmd/faultmanager/main_test.go
package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/fault-manager/internal/config"
)

func startServe(t *testing.T) (endpoint, logPath string) {
	t.Helper()

	// unix socket paths are length limited; keep the dir short
	dir, err := os.MkdirTemp("", "fm")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	endpoint = filepath.Join(dir, "ep")
	logPath = filepath.Join(dir, "fault_log")

	cfg, err := config.Parse([]byte("manager:\n  endpoint: " + endpoint + "\n  log_path: " + logPath + "\n  timezone: UTC\n"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, io.Discard) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("serve did not stop")
		}
	})

	require.Eventually(t, func() bool {
		fi, err := os.Stat(endpoint)
		return err == nil && fi.Mode()&os.ModeSocket != 0
	}, 5*time.Second, 10*time.Millisecond)

	return endpoint, logPath
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_WriteReadStat(t *testing.T) {
	ep, logPath := startServe(t)

	out, err := runCLI(t, "--endpoint", ep, "write", "42")
	require.NoError(t, err)
	assert.Equal(t, "accepted 2 bytes\n", out)

	out, err = runCLI(t, "--endpoint", ep, "read")
	require.NoError(t, err)
	assert.Equal(t, "Fault manager works ok\n", out)

	out, err = runCLI(t, "--endpoint", ep, "read", "--size", "5", "--raw")
	require.NoError(t, err)
	assert.Equal(t, "Fault manager works ok\n\x00", out)

	out, err = runCLI(t, "--endpoint", ep, "stat")
	require.NoError(t, err)
	assert.Contains(t, out, "size:  24\n")

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} 42\n$`, string(b))
}

func TestCLI_PulseHex(t *testing.T) {
	ep, logPath := startServe(t)

	_, err := runCLI(t, "--endpoint", ep, "pulse", "--code", "15", "--value", "0x44")
	require.NoError(t, err)
	_, err = runCLI(t, "--endpoint", ep, "pulse", "--code", "3", "--value", "9")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		b, err := os.ReadFile(logPath)
		return err == nil && strings.HasSuffix(string(b), " 68\n")
	}, 5*time.Second, 10*time.Millisecond)

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(b), "\n"))
}

func TestCLI_PulseBadValue(t *testing.T) {
	_, err := runCLI(t, "--endpoint", "/nonexistent", "pulse", "--value", "zz")
	assert.Error(t, err)
}

func TestCLI_NoEndpoint(t *testing.T) {
	_, err := runCLI(t, "--endpoint", filepath.Join(t.TempDir(), "missing"), "stat")
	assert.Error(t, err)
}
