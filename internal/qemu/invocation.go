// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"os"
	"runtime"
	"strconv"
	"strings"
)

// BootMode selects one of the target's boot variants.
type BootMode string

const (
	// BootModeNormal boots the default target configuration.
	BootModeNormal BootMode = "normal"

	// BootModeRecovery boots the target's recovery variant.
	BootModeRecovery BootMode = "recovery"
)

// Environment variables of the child invocation contract.
const (
	// EnvGuestDebug selects the target's debug verbosity.
	EnvGuestDebug = "BOOTWATCH_GUEST_DEBUG"

	// EnvGuestLog is the log destination path announced to the target.
	EnvGuestLog = "BOOTWATCH_GUEST_LOG"
)

// InvocationSpec defines the parameters of one target launch.
type InvocationSpec struct {
	// Path to the emulator binary.
	Executable string

	// Path to the kernel image to boot.
	Kernel string

	// Boot variant of the target.
	Mode BootMode

	// Enable the emulator display window. Off by default, CI never wants
	// it.
	Display bool

	// Machine type. Depends on the emulator binary used.
	Machine string

	// Number of CPUs for the guest.
	SMP uint64

	// Memory for the machine in MB.
	Memory uint64

	// Disable KVM support.
	NoKVM bool

	// Increase guest debug verbosity via the invocation environment.
	Verbose bool

	// LogPath is announced to the target via the environment so external
	// tooling can correlate the artifact.
	LogPath string

	// ExtraArgs are passed to the emulator verbatim. They must not collide
	// with the essential arguments or building the invocation fails.
	ExtraArgs []Argument

	// Additional kernel cmdline arguments.
	Append []string
}

// AddDefaults fills empty fields with defaults for the host architecture.
func (s *InvocationSpec) AddDefaults() error {
	var executable, machine string

	switch runtime.GOARCH {
	case "amd64":
		executable = "qemu-system-x86_64"
		machine = "q35"
	case "arm64":
		executable = "qemu-system-aarch64"
		machine = "virt"
	case "riscv64":
		executable = "qemu-system-riscv64"
		machine = "virt"
	default:
		return ErrArchNotSupported
	}

	if s.Executable == "" {
		s.Executable = executable
	}

	if s.Machine == "" {
		s.Machine = machine
	}

	if s.Mode == "" {
		s.Mode = BootModeNormal
	}

	if s.SMP == 0 {
		s.SMP = 1
	}

	if s.Memory == 0 {
		s.Memory = 256
	}

	if !s.NoKVM {
		s.NoKVM = !KVMAvailable()
	}

	return nil
}

// Validate checks the spec for completeness and known incompatibilities.
func (s *InvocationSpec) Validate() error {
	if s.Executable == "" {
		return ErrExecutableMissing
	}

	if s.Kernel == "" {
		return ErrKernelMissing
	}

	switch s.Mode {
	case BootModeNormal, BootModeRecovery:
	default:
		return ErrBootModeUnknown
	}

	return nil
}

// Arguments compiles the argument list for the emulator invocation.
func (s *InvocationSpec) Arguments() Arguments {
	args := Arguments{
		UniqueArg("kernel", s.Kernel),
	}

	if s.Machine != "" {
		args.Add(UniqueArg("machine", s.Machine))
	}

	if s.SMP != 0 {
		args.Add(UniqueArg("smp", strconv.FormatUint(s.SMP, 10)))
	}

	if s.Memory != 0 {
		args.Add(UniqueArg("m", strconv.FormatUint(s.Memory, 10)))
	}

	if !s.NoKVM {
		args.Add(UniqueArg("enable-kvm"))
	}

	display := "none"
	if s.Display {
		display = "gtk"
	}

	args.Add(
		UniqueArg("display", display),
		// All guest console output arrives on stdio.
		RepeatableArg("serial", "mon:stdio"),
		// Guest must not reboot, a finished target must terminate.
		UniqueArg("no-reboot"),
		UniqueArg("nodefaults"),
		UniqueArg("no-user-config"),
	)

	args.Add(s.ExtraArgs...)

	kernelCmdline := strings.Join(s.kernelCmdlineArgs(), " ")
	args.Add(RepeatableArg("append", kernelCmdline))

	return args
}

// kernelCmdlineArgs returns the kernel cmdline arguments.
func (s *InvocationSpec) kernelCmdlineArgs() []string {
	cmdline := []string{
		"console=ttyS0",
		"panic=-1",
	}

	if s.Mode == BootModeRecovery {
		cmdline = append(cmdline, "boot=recovery")
	}

	if s.Verbose {
		cmdline = append(cmdline, "debug")
	} else {
		cmdline = append(cmdline, "quiet")
	}

	cmdline = append(cmdline, s.Append...)

	return cmdline
}

// CommandLine builds the complete argument string slice.
func (s *InvocationSpec) CommandLine() ([]string, error) {
	return s.Arguments().Build()
}

// Env returns the invocation environment: the current process environment
// extended by the child contract variables.
func (s *InvocationSpec) Env() []string {
	env := os.Environ()

	debug := "0"
	if s.Verbose {
		debug = "1"
	}

	env = append(env, EnvGuestDebug+"="+debug)

	if s.LogPath != "" {
		env = append(env, EnvGuestLog+"="+s.LogPath)
	}

	return env
}
