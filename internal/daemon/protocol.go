// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bootwatch/bootwatch/internal/console"
	"github.com/bootwatch/bootwatch/internal/pattern"
	"github.com/bootwatch/bootwatch/internal/session"
)

// Request is a single JSON-RPC request from a client.
type Request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
	ID     int             `json:"id,omitempty"`
}

// Response is the JSON-RPC response to a [Request].
type Response struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	ID     int             `json:"id,omitempty"`
}

// PatternSpec is the wire form of a detection pattern. An expression
// prefixed with "re:" is a regular expression, anything else a literal
// substring.
type PatternSpec struct {
	Class string `json:"class"`
	Expr  string `json:"expr"`
}

// Compile converts the spec into a [pattern.Pattern].
func (p PatternSpec) Compile() (pattern.Pattern, error) {
	class, err := pattern.ParseClass(p.Class)
	if err != nil {
		return pattern.Pattern{}, err
	}

	return pattern.Parse(class, p.Expr)
}

// StartParams configures a new session.
type StartParams struct {
	Mode     string        `json:"mode,omitempty"`
	Display  bool          `json:"display,omitempty"`
	Deadline string        `json:"deadline,omitempty"`
	Patterns []PatternSpec `json:"patterns,omitempty"`
}

// StartResult describes a freshly spawned session.
type StartResult struct {
	ID       string `json:"id"`
	PID      int    `json:"pid"`
	Deadline string `json:"deadline"`
}

// StatusResult describes the most recent session.
type StatusResult struct {
	ID      string     `json:"id,omitempty"`
	State   string     `json:"state"`
	Mode    string     `json:"mode,omitempty"`
	PID     int        `json:"pid,omitempty"`
	Result  *RunResult `json:"result,omitempty"`
	Uptime  string     `json:"uptime,omitempty"`
	Started string     `json:"started,omitempty"`
}

// RunningResult reports target processes alive on the host.
type RunningResult struct {
	Count   int  `json:"count"`
	Tracked bool `json:"tracked"`
}

// KillResult reports how many target processes were force-killed.
type KillResult struct {
	Killed int `json:"killed"`
}

// SendParams carries input for the active session.
type SendParams struct {
	Text string `json:"text"`
}

// RunParams describes a bounded send-and-wait operation. An empty Text
// sends nothing, a nil Wait returns right after the send.
type RunParams struct {
	Text    string       `json:"text,omitempty"`
	Wait    *PatternSpec `json:"wait,omitempty"`
	Timeout string       `json:"timeout,omitempty"`
}

// WaitPromptParams bounds a wait for the configured ready pattern.
type WaitPromptParams struct {
	Timeout string `json:"timeout,omitempty"`
}

// MatchInfo is the wire form of a [pattern.Match].
type MatchInfo struct {
	Class string `json:"class"`
	Expr  string `json:"expr"`
	Line  string `json:"line"`
	Index int    `json:"index"`
}

// RunResult is the wire form of a [session.Result].
type RunResult struct {
	Status     string     `json:"status,omitempty"`
	Elapsed    string     `json:"elapsed"`
	Matched    *MatchInfo `json:"matched,omitempty"`
	Output     []string   `json:"output,omitempty"`
	NoPatterns bool       `json:"no_patterns,omitempty"`
	Err        string     `json:"err,omitempty"`
}

// LogsParams limits a log request to the last N lines.
type LogsParams struct {
	N int `json:"n"`
}

// LogsResult carries buffered console lines, oldest first.
type LogsResult struct {
	Lines []string `json:"lines,omitempty"`
}

func wireResult(result *session.Result) *RunResult {
	if result == nil {
		return nil
	}

	wire := &RunResult{
		Status:     string(result.Status),
		Elapsed:    result.Elapsed.String(),
		Output:     wireLines(result.Output),
		NoPatterns: result.NoPatterns,
	}

	if result.Matched != nil {
		wire.Matched = &MatchInfo{
			Class: string(result.Matched.Pattern.Class()),
			Expr:  result.Matched.Pattern.String(),
			Line:  result.Matched.Line,
			Index: result.Matched.Index,
		}
	}

	if result.Err != nil {
		wire.Err = result.Err.Error()
	}

	return wire
}

func wireLines(lines []console.Line) []string {
	if len(lines) == 0 {
		return nil
	}

	texts := make([]string, len(lines))
	for idx, line := range lines {
		texts[idx] = line.Text
	}

	return texts
}

func parseTimeout(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}

	timeout, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse timeout: %w", err)
	}

	return timeout, nil
}
