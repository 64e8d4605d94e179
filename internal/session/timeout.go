// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"time"
)

// opContext bounds a sub-operation by the per-operation timeout and the
// session deadline, whichever elapses first. A per-operation timeout never
// extends the session deadline.
func opContext(
	ctx context.Context,
	deadline time.Time,
	timeout time.Duration,
) (context.Context, context.CancelFunc) {
	opDeadline := time.Now().Add(timeout)
	if deadline.Before(opDeadline) {
		opDeadline = deadline
	}

	return context.WithDeadline(ctx, opDeadline)
}
