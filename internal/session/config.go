// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"time"

	"github.com/bootwatch/bootwatch/internal/pattern"
)

// DefaultDeadline bounds a session if the config does not set one.
const DefaultDeadline = 5 * time.Minute

// Config defines one session run.
type Config struct {
	// Command is the executable that launches the target.
	Command string

	// Args are the invocation arguments.
	Args []string

	// Env is the invocation environment. If nil, the current process
	// environment is inherited.
	Env []string

	// Mode names the target's boot variant. Informational only, the
	// invocation is fully described by Command, Args and Env.
	Mode string

	// ID identifies the session and names its log artifact. Generated
	// from the start time if empty.
	ID string

	// Patterns are the signal detection rules for this session. With no
	// patterns the session runs for its full deadline unconditionally.
	Patterns []pattern.Pattern

	// Deadline is the wall-clock budget for the whole session. It is
	// fixed at start and never extended.
	Deadline time.Duration
}

// NewID generates a session ID from the current time. IDs sort
// chronologically.
func NewID() string {
	return time.Now().UTC().Format("20060102-150405.000000000")
}

func (c *Config) id() string {
	if c.ID != "" {
		return c.ID
	}

	return NewID()
}

func (c *Config) deadline() time.Duration {
	if c.Deadline <= 0 {
		return DefaultDeadline
	}

	return c.Deadline
}
