// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"sync"
	"time"
)

// Line is a single console output line.
type Line struct {
	// Index is the 0-based emission index of the line.
	Index int
	// At is the monotonic offset from session start at which the line was
	// read.
	At time.Duration
	// Text is the line content without trailing line break.
	Text string
}

// Buffer is the append-only store of all lines emitted during one session.
//
// Lines are immutable once appended and are never reordered or
// deduplicated. The zero value is not usable, use [NewBuffer].
type Buffer struct {
	mu    sync.Mutex
	lines []Line
	wake  chan struct{}
}

// NewBuffer creates an empty [Buffer].
func NewBuffer() *Buffer {
	return &Buffer{
		wake: make(chan struct{}),
	}
}

// Append adds a line to the buffer and wakes all pending cursors.
func (b *Buffer) Append(line Line) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, line)

	close(b.wake)
	b.wake = make(chan struct{})
}

// Len returns the number of buffered lines.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.lines)
}

// Tail returns the last min(n, Len) lines in emission order.
//
// The buffer is not mutated. The returned slice is a copy.
func (b *Buffer) Tail(n int) []Line {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > len(b.lines) {
		n = len(b.lines)
	}

	if n <= 0 {
		return nil
	}

	tail := make([]Line, n)
	copy(tail, b.lines[len(b.lines)-n:])

	return tail
}

// Since returns all lines with emission index >= from, plus a channel that
// is closed on the next append.
//
// It is the pull cursor for per-operation waits: consume the returned
// lines, then block on the channel for more.
func (b *Buffer) Since(from int) ([]Line, <-chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	wake := b.wake

	if from < 0 {
		from = 0
	}

	if from >= len(b.lines) {
		return nil, wake
	}

	since := make([]Line, len(b.lines)-from)
	copy(since, b.lines[from:])

	return since, wake
}
