// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/bootwatch/bootwatch/internal/console"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledBuffer(n int) *console.Buffer {
	buffer := console.NewBuffer()
	for i := 0; i < n; i++ {
		buffer.Append(console.Line{
			Index: i,
			At:    time.Duration(i) * time.Millisecond,
			Text:  fmt.Sprintf("line %d", i),
		})
	}

	return buffer
}

func TestBufferTail(t *testing.T) {
	tests := []struct {
		name      string
		buffered  int
		n         int
		expected  []string
		unchanged int
	}{
		{
			name:     "empty buffer",
			buffered: 0,
			n:        5,
		},
		{
			name:     "fewer buffered than requested",
			buffered: 2,
			n:        5,
			expected: []string{"line 0", "line 1"},
		},
		{
			name:     "more buffered than requested",
			buffered: 5,
			n:        2,
			expected: []string{"line 3", "line 4"},
		},
		{
			name:     "zero requested",
			buffered: 3,
			n:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buffer := filledBuffer(tt.buffered)

			tail := buffer.Tail(tt.n)

			texts := make([]string, 0, len(tail))
			for _, line := range tail {
				texts = append(texts, line.Text)
			}

			if tt.expected == nil {
				assert.Empty(t, texts)
			} else {
				assert.Equal(t, tt.expected, texts)
			}

			// Tail must never mutate the buffer.
			assert.Equal(t, tt.buffered, buffer.Len())
		})
	}
}

func TestBufferTailOrder(t *testing.T) {
	buffer := filledBuffer(10)

	tail := buffer.Tail(4)
	require.Len(t, tail, 4)

	for i, line := range tail {
		assert.Equal(t, 6+i, line.Index)
	}
}

func TestBufferSince(t *testing.T) {
	buffer := filledBuffer(3)

	lines, wake := buffer.Since(1)
	require.Len(t, lines, 2)
	assert.Equal(t, "line 1", lines[0].Text)
	assert.Equal(t, "line 2", lines[1].Text)

	select {
	case <-wake:
		t.Fatal("cursor woke without append")
	default:
	}

	buffer.Append(console.Line{Index: 3, Text: "line 3"})

	select {
	case <-wake:
	case <-time.After(time.Second):
		t.Fatal("cursor not woken by append")
	}

	lines, _ = buffer.Since(3)
	require.Len(t, lines, 1)
	assert.Equal(t, "line 3", lines[0].Text)

	lines, _ = buffer.Since(17)
	assert.Empty(t, lines)
}
