// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console_test

import (
	"strings"
	"testing"
	"time"

	"github.com/bootwatch/bootwatch/internal/console"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type failingWriter struct {
	failAfter int
	writes    int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > w.failAfter {
		return 0, assert.AnError
	}

	return len(p), nil
}

func drain(t *testing.T, streamer *console.Streamer) []console.Line {
	t.Helper()

	var lines []console.Line

	for {
		select {
		case line, ok := <-streamer.Lines():
			if !ok {
				return lines
			}

			lines = append(lines, line)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout draining streamer")
		}
	}
}

func TestStreamerRun(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name: "empty",
		},
		{
			name:     "lf terminated",
			input:    "first\nsecond\nthird\n",
			expected: []string{"first", "second", "third"},
		},
		{
			name:     "crlf terminated",
			input:    "first\r\nsecond\r\n",
			expected: []string{"first", "second"},
		},
		{
			name:     "unterminated last line",
			input:    "first\nsecond",
			expected: []string{"first", "second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buffer := console.NewBuffer()

			var artifact strings.Builder

			streamer := console.NewStreamer(buffer, &artifact, time.Now())

			done := make(chan error, 1)
			go func() {
				done <- streamer.Run(strings.NewReader(tt.input))
			}()

			lines := drain(t, streamer)
			require.NoError(t, <-done)

			texts := make([]string, 0, len(lines))
			for idx, line := range lines {
				assert.Equal(t, idx, line.Index)
				texts = append(texts, line.Text)
			}

			if tt.expected == nil {
				assert.Empty(t, texts)
			} else {
				assert.Equal(t, tt.expected, texts)
			}

			assert.Equal(t, len(tt.expected), buffer.Len())

			for _, text := range tt.expected {
				assert.Contains(t, artifact.String(), text)
			}

			assert.NoError(t, streamer.ArtifactErr())
		})
	}
}

func TestStreamerArtifactDegradation(t *testing.T) {
	buffer := console.NewBuffer()
	streamer := console.NewStreamer(buffer, &failingWriter{failAfter: 1}, time.Now())

	done := make(chan error, 1)
	go func() {
		done <- streamer.Run(strings.NewReader("one\ntwo\nthree\n"))
	}()

	lines := drain(t, streamer)
	require.NoError(t, <-done)

	// All lines survive in memory even though the artifact failed.
	require.Len(t, lines, 3)
	assert.Equal(t, 3, buffer.Len())

	err := streamer.ArtifactErr()
	require.Error(t, err)
	assert.ErrorIs(t, err, console.ErrArtifactWrite)
}
