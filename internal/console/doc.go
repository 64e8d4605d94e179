// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package console streams the combined output of the supervised child.
//
// The [Streamer] drains the child's output line by line, stamps each line
// with its offset from session start, persists it to the log artifact and
// appends it to the in-memory [Buffer]. Consumers observe lines either via
// the streamer's notification channel or via the buffer's cursor, both in
// strict emission order.
package console
