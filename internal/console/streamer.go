// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Streamer reads the child's combined output and fans each line out to the
// log artifact, the [Buffer] and the notification channel.
type Streamer struct {
	buffer      *Buffer
	artifact    io.Writer
	start       time.Time
	lines       chan Line
	artifactErr error
}

// NewStreamer creates a [Streamer] appending to the given buffer and
// artifact writer. The artifact may be nil for in-memory only operation.
// Line offsets are relative to start.
func NewStreamer(buffer *Buffer, artifact io.Writer, start time.Time) *Streamer {
	return &Streamer{
		buffer:   buffer,
		artifact: artifact,
		start:    start,
		lines:    make(chan Line),
	}
}

// Run drains src until EOF or read error.
//
// Every line is delivered exactly once in emission order on the channel
// returned by [Streamer.Lines]. The channel is closed when the source
// stream ends. The consumer must drain the channel until it is closed or
// Run cannot finish.
func (s *Streamer) Run(src io.Reader) error {
	defer close(s.lines)

	// Carriage returns are removed by [bufio.ScanLines].
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := Line{
			Index: s.buffer.Len(),
			At:    time.Since(s.start),
			Text:  scanner.Text(),
		}

		// Persist before the line becomes observable, so a matched line is
		// never missing from the artifact.
		s.persist(line)

		s.buffer.Append(line)
		s.lines <- line
	}

	err := scanner.Err()
	if err != nil {
		return &Error{Name: "stream", Err: err}
	}

	return nil
}

// Lines returns the notification channel fed by [Streamer.Run].
func (s *Streamer) Lines() <-chan Line {
	return s.lines
}

// ArtifactErr returns the first artifact write error, if any.
func (s *Streamer) ArtifactErr() error {
	return s.artifactErr
}

func (s *Streamer) persist(line Line) {
	if s.artifact == nil {
		return
	}

	_, err := fmt.Fprintf(s.artifact, "[%11.6f] %s\n",
		line.At.Seconds(), line.Text)
	if err == nil {
		return
	}

	s.artifactErr = &Error{
		Name: "artifact",
		Err:  fmt.Errorf("%w: %w", ErrArtifactWrite, err),
	}

	slog.Warn("Log artifact unavailable, keeping output in memory only",
		slog.Any("error", err))

	s.artifact = nil
}
