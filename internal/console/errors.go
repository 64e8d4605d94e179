// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"errors"
	"fmt"
)

// ErrArtifactWrite is returned if persisting a line to the log artifact
// failed. The streamer degrades to the in-memory buffer in that case, so
// the error is informational, not fatal.
var ErrArtifactWrite = errors.New("artifact write failed")

// Error wraps any error occurring during console streaming.
type Error struct {
	Name string
	Err  error
}

// Error implements the [error] interface.
func (e *Error) Error() string {
	return fmt.Sprintf("console %s: %v", e.Name, e.Err)
}

// Is implements the [errors.Is] interface.
func (*Error) Is(other error) bool {
	_, ok := other.(*Error)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *Error) Unwrap() error {
	return e.Err
}
