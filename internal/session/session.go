// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"time"

	"github.com/bootwatch/bootwatch/internal/console"
	"github.com/bootwatch/bootwatch/internal/pattern"
)

// Session is one supervised run of the target, from start to terminal
// state.
type Session struct {
	// ID identifies the session and its log artifact.
	ID string

	// Mode is the target's boot variant.
	Mode string

	// PID is the child process ID.
	PID int

	// StartedAt is the session start timestamp.
	StartedAt time.Time

	// Deadline is the absolute wall-clock time at which the session is
	// forcibly ended.
	Deadline time.Time

	buffer   *console.Buffer
	patterns *pattern.Set
	cancel   context.CancelFunc

	mu     sync.Mutex
	state  State
	result *Result
	done   chan struct{}
}

// Result is the terminal outcome of a session or of a bounded wait
// operation.
type Result struct {
	// Status is the terminal status. It is empty only for send-only
	// operations that did not wait for anything.
	Status Status

	// Elapsed is the time from start to terminal state.
	Elapsed time.Duration

	// Matched is the first qualifying pattern match, if any.
	Matched *pattern.Match

	// Output is the captured output relevant to the operation.
	Output []console.Line

	// NoPatterns is set if no patterns were registered, so the run was a
	// plain timed one.
	NoPatterns bool

	// Err carries error detail for crashed or degraded runs.
	Err error
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Result returns the terminal result, or nil while the session has not
// terminated yet.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.result
}

// Done returns a channel that is closed once the session reached
// [StateTerminated].
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Logs returns the last min(n, buffered) lines in emission order.
func (s *Session) Logs(n int) []console.Line {
	return s.buffer.Tail(n)
}

// terminatedNow reports whether the session has already terminated.
func (s *Session) terminatedNow() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
}

// finish records the terminal result. The child must be reaped and the
// artifact closed before calling it.
func (s *Session) finish(result *Result) {
	s.mu.Lock()
	s.result = result
	s.state = StateTerminated
	s.mu.Unlock()

	close(s.done)
}
