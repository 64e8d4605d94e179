// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/bootwatch/bootwatch/internal/artifact"
	"github.com/bootwatch/bootwatch/internal/pattern"
	"github.com/bootwatch/bootwatch/internal/qemu"
	"github.com/bootwatch/bootwatch/internal/session"
)

// newInvocationSpec builds the emulator invocation from the merged
// configuration.
func newInvocationSpec(v *viper.Viper, mode string) (*qemu.InvocationSpec, error) {
	spec := &qemu.InvocationSpec{
		Executable: v.GetString(flagQemu),
		Kernel:     v.GetString(flagKernel),
		Mode:       qemu.BootMode(mode),
		Display:    v.GetBool(flagDisplay),
		Machine:    v.GetString(flagMachine),
		SMP:        v.GetUint64(flagSMP),
		Memory:     v.GetUint64(flagMemory),
		NoKVM:      v.GetBool(flagNoKVM),
		Verbose:    v.GetBool(flagVerbose),
		Append:     v.GetStringSlice(flagAppend),
	}

	err := spec.AddDefaults()
	if err != nil {
		return nil, fmt.Errorf("invocation defaults: %w", err)
	}

	err = spec.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate invocation: %w", err)
	}

	return spec, nil
}

// newSessionConfig compiles an invocation spec into a session config. The
// session ID is fixed here so the artifact path can be announced to the
// target before it starts.
func newSessionConfig(
	spec *qemu.InvocationSpec,
	store *artifact.Store,
	deadline time.Duration,
	patterns []pattern.Pattern,
) (session.Config, error) {
	id := session.NewID()

	if store != nil {
		spec.LogPath = store.Path(id)
	}

	args, err := spec.CommandLine()
	if err != nil {
		return session.Config{}, fmt.Errorf("build command line: %w", err)
	}

	return session.Config{
		Command:  spec.Executable,
		Args:     args,
		Env:      spec.Env(),
		Mode:     string(spec.Mode),
		ID:       id,
		Patterns: patterns,
		Deadline: deadline,
	}, nil
}

// newController wires supervisor, artifact store and prompt pattern for
// the given invocation target.
func newController(
	v *viper.Viper,
	spec *qemu.InvocationSpec,
	store *artifact.Store,
) (*session.Controller, error) {
	grace := v.GetDuration(flagGrace)
	if grace <= 0 {
		grace = session.DefaultGracePeriod
	}

	prompt := session.DefaultPromptPattern

	if expr := v.GetString(flagPrompt); expr != "" {
		var err error

		prompt, err = pattern.Parse(pattern.ClassCheckpoint, expr)
		if err != nil {
			return nil, fmt.Errorf("prompt pattern: %w", err)
		}
	}

	sup := session.NewSupervisor(filepath.Base(spec.Executable), grace)

	return session.NewController(sup, store, prompt), nil
}

// parsePatterns converts repeatable pattern flag values of one class. An
// expression prefixed with "re:" is compiled as regular expression.
func parsePatterns(
	class pattern.Class,
	exprs []string,
) ([]pattern.Pattern, error) {
	patterns := make([]pattern.Pattern, 0, len(exprs))

	for _, expr := range exprs {
		p, err := pattern.Parse(class, expr)
		if err != nil {
			return nil, fmt.Errorf("%s pattern %q: %w", class, expr, err)
		}

		patterns = append(patterns, p)
	}

	return patterns, nil
}

// sessionPatterns collects the detection patterns from the run and start
// flags.
func sessionPatterns(v *viper.Viper) ([]pattern.Pattern, error) {
	var patterns []pattern.Pattern

	for _, group := range []struct {
		class pattern.Class
		flag  string
	}{
		{pattern.ClassSuccess, flagSuccess},
		{pattern.ClassFailure, flagFault},
		{pattern.ClassCheckpoint, flagCheckpoint},
	} {
		parsed, err := parsePatterns(group.class, v.GetStringSlice(group.flag))
		if err != nil {
			return nil, err
		}

		patterns = append(patterns, parsed...)
	}

	return patterns, nil
}
