// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package daemon exposes session control over a local unix socket.
//
// The protocol is minimal JSON-RPC: one request and one response per
// connection. [Server] wraps a [session.Controller], [Client] is the
// matching dial-per-call side used by the CLI.
package daemon
