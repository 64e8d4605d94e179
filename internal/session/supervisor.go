// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultGracePeriod is the time between the graceful terminate request
// and the forced kill if the child does not exit on its own.
const DefaultGracePeriod = 5 * time.Second

// Supervisor owns the child process handle of the active session.
//
// It enforces single-active-session exclusivity, performs graceful then
// forced termination and reaps the child. A Supervisor can run any number
// of sessions, one after another.
type Supervisor struct {
	target string
	grace  time.Duration

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	reaped  chan struct{}
	waitErr error
}

// NewSupervisor creates a [Supervisor] for the target with the given
// invocation name. The name is used to find stray target processes for
// [Supervisor.Running] and [Supervisor.KillAll]. A grace duration <= 0
// selects [DefaultGracePeriod].
func NewSupervisor(target string, grace time.Duration) *Supervisor {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	return &Supervisor{
		target: filepath.Base(target),
		grace:  grace,
	}
}

// Start spawns the child process and returns its combined output stream.
//
// It fails with [ErrSessionAlreadyRunning] if the previous child has not
// been reaped yet, and with a [SpawnError] if the child cannot be
// launched.
func (s *Supervisor) Start(
	executable string,
	args []string,
	env []string,
) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil && !s.terminated() {
		return nil, ErrSessionAlreadyRunning
	}

	cmd := exec.Command(executable, args...)
	if env != nil {
		cmd.Env = env
	}

	// Stdout and stderr share one pipe, so the reader observes the
	// combined output in emission order.
	outRead, outWrite, err := os.Pipe()
	if err != nil {
		return nil, &SpawnError{Err: err}
	}

	cmd.Stdout = outWrite
	cmd.Stderr = outWrite

	stdin, err := cmd.StdinPipe()
	if err != nil {
		_ = outRead.Close()
		_ = outWrite.Close()

		return nil, &SpawnError{Err: err}
	}

	err = cmd.Start()
	if err != nil {
		_ = outRead.Close()
		_ = outWrite.Close()

		return nil, &SpawnError{Err: err}
	}

	// The child inherited its own copy of the write end. Closing ours
	// makes the reader see EOF once the child is gone.
	_ = outWrite.Close()

	s.cmd = cmd
	s.stdin = stdin
	s.reaped = make(chan struct{})
	// The previous child's exit error must not leak into the new session.
	s.waitErr = nil

	reaped := s.reaped

	go func() {
		err := cmd.Wait()

		s.mu.Lock()
		s.waitErr = err
		s.mu.Unlock()

		close(reaped)
	}()

	return outRead, nil
}

// terminated reports whether the tracked child has been reaped. Caller
// must hold the mutex.
func (s *Supervisor) terminated() bool {
	if s.reaped == nil {
		return true
	}

	select {
	case <-s.reaped:
		return true
	default:
		return false
	}
}

// Alive reports whether the tracked child process is still running.
func (s *Supervisor) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cmd != nil && !s.terminated()
}

// PID returns the process ID of the tracked child, or 0 if none was
// started.
func (s *Supervisor) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}

	return s.cmd.Process.Pid
}

// Reaped returns a channel that is closed once the tracked child has been
// reaped. It returns a closed channel if no child was started.
func (s *Supervisor) Reaped() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reaped == nil {
		closed := make(chan struct{})
		close(closed)

		return closed
	}

	return s.reaped
}

// WaitErr returns the error [os/exec.Cmd.Wait] returned for the reaped
// child, if any.
func (s *Supervisor) WaitErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.waitErr
}

// Send writes the given text plus a line break to the child's input.
func (s *Supervisor) Send(text string) error {
	s.mu.Lock()

	if s.cmd == nil || s.terminated() {
		s.mu.Unlock()
		return ErrNotRunning
	}

	stdin := s.stdin
	s.mu.Unlock()

	_, err := io.WriteString(stdin, text+"\n")
	if err != nil {
		return fmt.Errorf("write input: %w", err)
	}

	return nil
}

// Stop terminates the tracked child: graceful terminate request first,
// forced kill after the grace period. It blocks until the child is reaped
// and is a no-op if no child is alive.
//
// A cancelled context skips the remaining grace period and kills
// immediately. Stop never returns before the child is reaped.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()

	if s.cmd == nil || s.terminated() {
		s.mu.Unlock()
		return nil
	}

	proc := s.cmd.Process
	reaped := s.reaped
	s.mu.Unlock()

	_ = proc.Signal(unix.SIGTERM)

	timer := time.NewTimer(s.grace)
	defer timer.Stop()

	select {
	case <-reaped:
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}

	_ = proc.Kill()
	<-reaped

	return nil
}

// Running reports the number of target processes alive on the host and
// whether the tracked child is among them.
func (s *Supervisor) Running() (int, bool) {
	pids, err := processesByComm(s.target)
	if err != nil {
		pids = nil
	}

	return len(pids), s.Alive()
}

// KillAll force-kills every process on the host matching the target's
// invocation name, tracked or stray. Best-effort: processes that cannot
// be signalled are skipped. Returns the number of processes killed.
func (s *Supervisor) KillAll() (int, error) {
	pids, err := processesByComm(s.target)
	if err != nil {
		return 0, err
	}

	killed := 0

	for _, pid := range pids {
		if unix.Kill(pid, unix.SIGKILL) == nil {
			killed++
		}
	}

	return killed, nil
}
