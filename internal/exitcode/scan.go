// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package exitcode

import (
	"bufio"
	"fmt"
	"io"

	"github.com/bootwatch/bootwatch/internal/pattern"
)

// ScanLog audits a persisted log artifact after a run.
//
// It re-checks the complete artifact line by line: any fault pattern
// present yields [CodeFault], a missing required marker yields
// [CodeMarkersAbsent], otherwise [CodeOK]. Fault detection wins over
// missing markers.
func ScanLog(
	r io.Reader,
	faults []pattern.Pattern,
	required []pattern.Pattern,
) (Code, error) {
	found := make([]bool, len(required))

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		for _, fault := range faults {
			if fault.Matches(line) {
				return CodeFault, nil
			}
		}

		for idx, marker := range required {
			if !found[idx] && marker.Matches(line) {
				found[idx] = true
			}
		}
	}

	err := scanner.Err()
	if err != nil {
		return CodeFailed, fmt.Errorf("scan log: %w", err)
	}

	for _, ok := range found {
		if !ok {
			return CodeMarkersAbsent, nil
		}
	}

	return CodeOK, nil
}
