// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import (
	"errors"
	"fmt"
)

var (
	// ErrDaemonNotRunning is returned by [Client] if no daemon listens
	// on the socket.
	ErrDaemonNotRunning = errors.New("daemon not running")

	// ErrMethodUnknown is returned for requests with an unknown method.
	ErrMethodUnknown = errors.New("unknown method")
)

// RemoteError is an error the daemon reported for a request.
type RemoteError struct {
	Method string
	Msg    string
}

// Error implements the [error] interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("daemon: %s: %s", e.Method, e.Msg)
}

// Is implements the interface required by [errors.Is].
func (e *RemoteError) Is(other error) bool {
	oErr, ok := other.(*RemoteError)
	if !ok {
		return false
	}

	return oErr.Method == "" || oErr.Method == e.Method
}
