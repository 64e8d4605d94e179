// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessesByComm(t *testing.T) {
	// The test binary itself is always present in /proc.
	comm, err := os.ReadFile("/proc/self/comm")
	require.NoError(t, err)

	name := strings.TrimSpace(string(comm))

	pids, err := processesByComm(name)
	require.NoError(t, err)

	assert.Contains(t, pids, os.Getpid())
}

func TestProcessesByCommNoMatch(t *testing.T) {
	pids, err := processesByComm("definitely-not-a-process-name")
	require.NoError(t, err)

	assert.Empty(t, pids)
}

func TestTruncateComm(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "short name unchanged",
			input:    "sleep",
			expected: "sleep",
		},
		{
			name:     "long name truncated like the kernel does",
			input:    "qemu-system-x86_64",
			expected: "qemu-system-x86",
		},
		{
			name:     "boundary",
			input:    strings.Repeat("a", taskCommLen-1),
			expected: strings.Repeat("a", taskCommLen-1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncateComm(tt.input))
		})
	}
}
