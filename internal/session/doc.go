// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session owns the lifecycle of one supervised target run.
//
// The [Supervisor] holds the child process handle and enforces that at most
// one session is running at a time. The [Controller] composes supervisor,
// console streaming and pattern matching into the public operations: start
// a session, stop it, send input, wait for patterns with bounded time and
// fetch recent logs. Every session ends in [StateTerminated] with the child
// confirmed reaped, whether it matched a signal, ran into its deadline,
// exited early or was stopped explicitly.
package session
