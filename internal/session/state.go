// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

// State is the lifecycle state of a [Session].
type State string

const (
	// StateNotStarted is the state before the child has been spawned.
	StateNotStarted State = "not-started"

	// StateStarting is the state while the child is being spawned.
	StateStarting State = "starting"

	// StateRunning is the state while the child is alive and supervised.
	StateRunning State = "running"

	// StateTerminated is the final state. It is only entered after the
	// child process has been reaped and the log artifact is finalized.
	StateTerminated State = "terminated"
)

// Status is the terminal status of a session or a bounded wait operation.
//
// The zero value means no status was determined, which only occurs for
// send-only operations that do not wait for anything.
type Status string

const (
	// StatusSignalMatched means a registered pattern matched before the
	// deadline.
	StatusSignalMatched Status = "signal-matched"

	// StatusTimedOut means the deadline or operation timeout elapsed
	// without a qualifying match.
	StatusTimedOut Status = "timed-out"

	// StatusCrashed means the child exited before any match and before the
	// deadline.
	StatusCrashed Status = "crashed"

	// StatusStoppedByUser means the session was ended by an explicit stop.
	StatusStoppedByUser Status = "stopped"
)
