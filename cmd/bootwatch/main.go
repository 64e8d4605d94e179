// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/bootwatch/bootwatch/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		unix.SIGABRT,
		unix.SIGINT,
		unix.SIGTERM,
		unix.SIGQUIT,
		unix.SIGHUP,
	)
	defer cancel()

	rc := cli.Run(ctx, os.Args[1:], cli.IO{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})

	os.Exit(rc)
}
