// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon_test

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/bootwatch/bootwatch/internal/daemon"
	"github.com/bootwatch/bootwatch/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// serve runs a daemon for a shell child that echoes its input back and
// returns a connected client plus the socket path. Server and session
// are torn down on test cleanup.
func serve(t *testing.T) (*daemon.Client, string) {
	t.Helper()

	sockPath := filepath.Join(t.TempDir(), "bootwatch.sock")

	sup := session.NewSupervisor("cat", 500*time.Millisecond)
	ctrl := session.NewController(sup, nil, session.DefaultPromptPattern)

	launch := func(_ daemon.StartParams) (session.Config, error) {
		return session.Config{
			Command:  "/bin/sh",
			Args:     []string{"-c", "echo hello; exec cat"},
			Deadline: 30 * time.Second,
		}, nil
	}

	server := daemon.NewServer(sockPath, ctrl, launch)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)

	go func() {
		served <- server.Serve(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-served)
	})

	client := daemon.NewClient(sockPath)

	require.Eventually(t, client.IsRunning,
		5*time.Second, 10*time.Millisecond,
		"daemon did not come up")

	return client, sockPath
}

func TestDaemonRoundTrip(t *testing.T) {
	client, _ := serve(t)

	status, err := client.Status()
	require.NoError(t, err)
	assert.Equal(t, string(session.StateNotStarted), status.State)

	started, err := client.Start(daemon.StartParams{
		Mode:     "normal",
		Deadline: "30s",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, started.ID)
	assert.NotZero(t, started.PID)

	// Second start must be rejected while the session runs.
	_, err = client.Start(daemon.StartParams{})
	require.ErrorIs(t, err, &daemon.RemoteError{Method: "start"})

	result, err := client.Run(daemon.RunParams{
		Text:    "marco-polo",
		Wait:    &daemon.PatternSpec{Class: "checkpoint", Expr: "marco-polo"},
		Timeout: "5s",
	})
	require.NoError(t, err)
	assert.Equal(t, string(session.StatusSignalMatched), result.Status)
	require.NotNil(t, result.Matched)
	assert.Equal(t, "marco-polo", result.Matched.Line)

	lines, err := client.Logs(10)
	require.NoError(t, err)
	assert.Contains(t, lines, "hello")

	_, err = client.Running()
	require.NoError(t, err)

	stopped, err := client.Stop()
	require.NoError(t, err)
	assert.Equal(t, string(session.StatusStoppedByUser), stopped.Status)

	status, err = client.Status()
	require.NoError(t, err)
	assert.Equal(t, string(session.StateTerminated), status.State)
	assert.Equal(t, started.ID, status.ID)
}

func TestDaemonSendWithoutSession(t *testing.T) {
	client, _ := serve(t)

	err := client.Send("echo nope")
	require.ErrorIs(t, err, &daemon.RemoteError{Method: "send"})
}

func TestDaemonBadPattern(t *testing.T) {
	client, _ := serve(t)

	_, err := client.Start(daemon.StartParams{
		Patterns: []daemon.PatternSpec{
			{Class: "warning", Expr: "x"},
		},
	})
	require.ErrorIs(t, err, &daemon.RemoteError{Method: "start"})
}

func TestDaemonUnknownMethod(t *testing.T) {
	_, sockPath := serve(t)

	conn, err := net.DialTimeout("unix", sockPath, time.Second)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	err = json.NewEncoder(conn).Encode(daemon.Request{Method: "frobnicate"})
	require.NoError(t, err)

	var resp daemon.Response

	require.NoError(t, json.NewDecoder(conn).Decode(&resp))
	assert.Contains(t, resp.Error, "unknown method")
}

func TestClientDaemonNotRunning(t *testing.T) {
	client := daemon.NewClient(filepath.Join(t.TempDir(), "absent.sock"))

	assert.False(t, client.IsRunning())

	_, err := client.Status()
	require.ErrorIs(t, err, daemon.ErrDaemonNotRunning)
}
