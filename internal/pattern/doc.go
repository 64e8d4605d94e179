// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package pattern implements signal detection over console output lines.
//
// A [Pattern] is a matching rule for a single line, either a literal
// substring or a regular expression, tagged with a [Class]. A [Set] holds
// all patterns registered for one session and evaluates lines against them
// with fail-fast precedence: a failure class match on a line always wins
// over success and checkpoint matches on the same line.
package pattern
