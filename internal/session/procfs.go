// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// taskCommLen is the kernel's TASK_COMM_LEN. Process names in
// /proc/<pid>/comm are truncated to this length minus the terminator.
const taskCommLen = 16

// processesByComm returns the PIDs of all processes whose comm value
// matches the given name.
func processesByComm(name string) ([]int, error) {
	name = truncateComm(name)

	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("read proc: %w", err)
	}

	var pids []int

	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		comm, err := os.ReadFile(filepath.Join("/proc", entry.Name(), "comm"))
		if err != nil {
			// Process vanished or is not readable, skip it.
			continue
		}

		if strings.TrimSpace(string(comm)) == name {
			pids = append(pids, pid)
		}
	}

	return pids, nil
}

func truncateComm(name string) string {
	if len(name) >= taskCommLen {
		return name[:taskCommLen-1]
	}

	return name
}
