// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session_test

import (
	"bufio"
	"context"
	"testing"
	"time"

	"github.com/bootwatch/bootwatch/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSupervisorStartStop(t *testing.T) {
	sup := session.NewSupervisor("sleep", time.Second)

	output, err := sup.Start("/bin/sh", []string{"-c", "exec sleep 30"}, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = output.Close() })

	assert.True(t, sup.Alive())
	assert.NotZero(t, sup.PID())

	err = sup.Stop(context.Background())
	require.NoError(t, err)

	assert.False(t, sup.Alive())

	select {
	case <-sup.Reaped():
	default:
		t.Fatal("child not reaped after stop")
	}

	// Stopping an already-terminated session is a no-op.
	require.NoError(t, sup.Stop(context.Background()))
}

func TestSupervisorForcedKill(t *testing.T) {
	sup := session.NewSupervisor("sleep", 200*time.Millisecond)

	// The child ignores the graceful terminate request, so only the
	// forced kill after the grace period can end it.
	output, err := sup.Start(
		"/bin/sh",
		[]string{"-c", `trap "" TERM; exec sleep 30`},
		nil,
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = output.Close() })

	started := time.Now()

	err = sup.Stop(context.Background())
	require.NoError(t, err)

	assert.False(t, sup.Alive())
	assert.GreaterOrEqual(t, time.Since(started), 200*time.Millisecond)
}

func TestSupervisorExclusive(t *testing.T) {
	sup := session.NewSupervisor("sleep", time.Second)

	output, err := sup.Start("/bin/sh", []string{"-c", "exec sleep 30"}, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = sup.Stop(context.Background())
		_ = output.Close()
	})

	_, err = sup.Start("/bin/sh", []string{"-c", "exec sleep 30"}, nil)
	require.ErrorIs(t, err, session.ErrSessionAlreadyRunning)

	// The first child is unaffected.
	assert.True(t, sup.Alive())
}

func TestSupervisorSpawnFailure(t *testing.T) {
	sup := session.NewSupervisor("nonexistent", time.Second)

	_, err := sup.Start("/nonexistent/binary", nil, nil)
	require.ErrorIs(t, err, &session.SpawnError{})

	assert.False(t, sup.Alive())

	// A failed spawn must not block the next start.
	output, err := sup.Start("/bin/sh", []string{"-c", "true"}, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = output.Close() })

	<-sup.Reaped()
}

func TestSupervisorSend(t *testing.T) {
	sup := session.NewSupervisor("cat", time.Second)

	output, err := sup.Start("/bin/cat", nil, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = sup.Stop(context.Background())
		_ = output.Close()
	})

	require.NoError(t, sup.Send("hello target"))

	scanner := bufio.NewScanner(output)
	require.True(t, scanner.Scan())
	assert.Equal(t, "hello target", scanner.Text())
}

func TestSupervisorSendNotRunning(t *testing.T) {
	sup := session.NewSupervisor("cat", time.Second)

	require.ErrorIs(t, sup.Send("hello"), session.ErrNotRunning)
}

func TestSupervisorWaitErr(t *testing.T) {
	sup := session.NewSupervisor("sh", time.Second)

	output, err := sup.Start("/bin/sh", []string{"-c", "exit 7"}, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = output.Close() })

	<-sup.Reaped()

	require.Error(t, sup.WaitErr())
}

func TestSupervisorWaitErrReset(t *testing.T) {
	sup := session.NewSupervisor("sh", time.Second)

	output, err := sup.Start("/bin/sh", []string{"-c", "exit 7"}, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = output.Close() })

	<-sup.Reaped()
	require.Error(t, sup.WaitErr())

	// The next session must not report the previous child's exit error.
	output, err = sup.Start("/bin/sh", []string{"-c", "exec sleep 30"}, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = sup.Stop(context.Background())
		_ = output.Close()
	})

	assert.NoError(t, sup.WaitErr())
}
