// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import "errors"

var (
	// ErrArgumentCollision is returned if two [Argument]s are considered
	// equal.
	ErrArgumentCollision = errors.New("colliding args")

	// ErrBootModeUnknown is returned for a boot mode that is not one of the
	// supported variants.
	ErrBootModeUnknown = errors.New("unknown boot mode")

	// ErrKernelMissing is returned if the spec has no kernel image path.
	ErrKernelMissing = errors.New("no kernel image given")

	// ErrExecutableMissing is returned if the spec has no emulator binary
	// and no default could be determined.
	ErrExecutableMissing = errors.New("no emulator executable given")

	// ErrArchNotSupported is returned for host architectures without
	// invocation defaults.
	ErrArchNotSupported = errors.New("arch not supported")
)
