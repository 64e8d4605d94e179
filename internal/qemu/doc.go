// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package qemu builds the invocation of the emulated target.
//
// An [InvocationSpec] describes one launch of the target kernel under the
// emulator: boot mode, display flag, resources and the environment
// variables of the external contract. It compiles into the argument and
// environment string slices consumed by os/exec. The boot sequence itself
// is opaque to bootwatch; the only contract is that the child emits lines
// on its combined output.
package qemu
