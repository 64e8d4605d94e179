// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

// Flag names, bound to viper for config file and environment precedence.
const (
	// Global flags.
	flagDebug   = "debug"
	flagConfig  = "config"
	flagLogsDir = "logs-dir"
	flagSocket  = "socket"

	// Invocation flags shared by run and serve.
	flagQemu    = "qemu"
	flagKernel  = "kernel"
	flagMachine = "machine"
	flagSMP     = "smp"
	flagMemory  = "memory"
	flagNoKVM   = "no-kvm"
	flagDisplay = "display"
	flagVerbose = "guest-verbose"
	flagAppend  = "append"

	// Session flags.
	flagMode    = "mode"
	flagTimeout = "timeout"
	flagGrace   = "grace"

	// Pattern flags.
	flagSuccess    = "success"
	flagFault      = "fault"
	flagCheckpoint = "checkpoint"
	flagRequire    = "require"
	flagPrompt     = "prompt"

	// Serve flags.
	flagLogFile = "log-file"

	// Exec flags.
	flagWait      = "wait"
	flagWaitClass = "wait-class"

	// Logs flags.
	flagCount = "count"

	// Collect flags.
	flagOutput = "output"
)
