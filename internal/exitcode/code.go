// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package exitcode maps finished runs to the batch exit code contract.
//
// The contract for CI callers: 0 success, 1 timeout or failed run, 2 no
// log artifact produced, 3 fault pattern present, 4 required success
// markers absent.
package exitcode

import (
	"github.com/bootwatch/bootwatch/internal/pattern"
	"github.com/bootwatch/bootwatch/internal/session"
)

// Code is a process exit code of the batch entry point.
type Code int

const (
	// CodeOK means the signal was found, or none was requested and the
	// run completed.
	CodeOK Code = 0

	// CodeFailed means the run timed out or did not complete.
	CodeFailed Code = 1

	// CodeNoArtifact means no log artifact was produced.
	CodeNoArtifact Code = 2

	// CodeFault means a fault pattern is present in the output.
	CodeFault Code = 3

	// CodeMarkersAbsent means required success markers are missing from
	// the log.
	CodeMarkersAbsent Code = 4
)

// Int returns the code as basic int type for [os.Exit].
func (c Code) Int() int {
	return int(c)
}

// String implements [fmt.Stringer].
func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeFailed:
		return "failed"
	case CodeNoArtifact:
		return "no artifact"
	case CodeFault:
		return "fault detected"
	case CodeMarkersAbsent:
		return "markers absent"
	default:
		return "unknown"
	}
}

// FromResult maps a session result to its exit code.
func FromResult(result *session.Result) Code {
	switch result.Status {
	case session.StatusSignalMatched:
		if isFault(result.Matched) {
			return CodeFault
		}

		return CodeOK
	case session.StatusCrashed:
		// A plain timed run that completed cleanly on its own counts as
		// success, an early death of a monitored run does not.
		if result.NoPatterns && result.Err == nil {
			return CodeOK
		}

		return CodeFailed
	default:
		return CodeFailed
	}
}

// Evaluate combines the run result with the artifact audit from
// [ScanLog] into the final exit code.
//
// A missing artifact dominates, then fault detection from either side,
// then the run result, then missing markers.
func Evaluate(result *session.Result, audit Code) Code {
	fromResult := FromResult(result)

	switch {
	case audit == CodeNoArtifact:
		return CodeNoArtifact
	case audit == CodeFault || fromResult == CodeFault:
		return CodeFault
	case fromResult != CodeOK:
		return fromResult
	default:
		return audit
	}
}

func isFault(matched *pattern.Match) bool {
	return matched != nil && matched.Pattern.Class() == pattern.ClassFailure
}
