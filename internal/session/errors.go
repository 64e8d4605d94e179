// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import "errors"

var (
	// ErrSessionAlreadyRunning is returned if a session start is attempted
	// while another session is active. The active session is unaffected.
	ErrSessionAlreadyRunning = errors.New("session already running")

	// ErrNotRunning is returned for operations that require an active
	// session while there is none.
	ErrNotRunning = errors.New("no session running")
)

// SpawnError indicates the child process could not be launched. No session
// is created in that case.
type SpawnError struct {
	Err error
}

// Error implements the [error] interface.
func (e *SpawnError) Error() string {
	return "spawn: " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*SpawnError) Is(other error) bool {
	_, ok := other.(*SpawnError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *SpawnError) Unwrap() error {
	return e.Err
}
