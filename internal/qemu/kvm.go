// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import "golang.org/x/sys/unix"

// KVMAvailable checks if KVM acceleration can be used.
func KVMAvailable() bool {
	err := unix.Access("/dev/kvm", unix.W_OK)
	return err == nil
}
