// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// Class describes what a matched line means for the session.
type Class string

const (
	// ClassSuccess marks a line that completes the run successfully.
	ClassSuccess Class = "success"

	// ClassFailure marks a fault line. It takes precedence over all other
	// classes when multiple patterns match the same line.
	ClassFailure Class = "failure"

	// ClassCheckpoint marks a progress line, like a boot checkpoint or a
	// ready prompt.
	ClassCheckpoint Class = "checkpoint"
)

// Pattern is a single matching rule for one console line.
type Pattern struct {
	class   Class
	literal string
	re      *regexp.Regexp
}

// Literal creates a [Pattern] that matches lines containing text as
// substring.
func Literal(class Class, text string) Pattern {
	return Pattern{
		class:   class,
		literal: text,
	}
}

// Regexp creates a [Pattern] that matches lines against the given regular
// expression.
func Regexp(class Class, expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("compile pattern: %w", err)
	}

	return Pattern{
		class: class,
		re:    re,
	}, nil
}

// Class returns the class of the [Pattern].
func (p Pattern) Class() Class {
	return p.class
}

// String returns the matching rule source text.
func (p Pattern) String() string {
	if p.re != nil {
		return p.re.String()
	}

	return p.literal
}

// Matches reports whether the given line satisfies the [Pattern].
func (p Pattern) Matches(line string) bool {
	if p.re != nil {
		return p.re.MatchString(line)
	}

	if p.literal == "" {
		return false
	}

	return strings.Contains(line, p.literal)
}

// Match is a successful evaluation of a [Pattern] against a line.
type Match struct {
	Pattern Pattern
	// Line is the matched line text.
	Line string
	// Index is the emission index of the matched line.
	Index int
}

// Set is the collection of patterns registered for one session.
//
// The zero value is a valid empty set that never matches, used for plain
// timed runs.
type Set struct {
	patterns []Pattern
}

// NewSet creates a [Set] from the given patterns.
func NewSet(patterns ...Pattern) *Set {
	return &Set{patterns: patterns}
}

// Len returns the number of registered patterns.
func (s *Set) Len() int {
	return len(s.patterns)
}

// Match evaluates a single line against all registered patterns.
//
// Failure class matches win over success and checkpoint matches on the same
// line. Within a class, registration order decides.
func (s *Set) Match(line string, index int) (Match, bool) {
	var (
		match Match
		found bool
	)

	for _, p := range s.patterns {
		if !p.Matches(line) {
			continue
		}

		m := Match{Pattern: p, Line: line, Index: index}

		if p.Class() == ClassFailure {
			return m, true
		}

		if !found {
			match = m
			found = true
		}
	}

	return match, found
}
