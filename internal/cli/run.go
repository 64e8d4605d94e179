// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bootwatch/bootwatch/internal/artifact"
	"github.com/bootwatch/bootwatch/internal/exitcode"
	"github.com/bootwatch/bootwatch/internal/pattern"
	"github.com/bootwatch/bootwatch/internal/session"
)

// addInvocationFlags registers the emulator invocation flags shared by run
// and serve.
func addInvocationFlags(flags *pflag.FlagSet) {
	flags.String(flagQemu, "", "emulator binary (default: host architecture preset)")
	flags.String(flagKernel, "", "kernel image to boot")
	flags.String(flagMachine, "", "machine type (default: host architecture preset)")
	flags.Uint64(flagSMP, 0, "number of guest CPUs")
	flags.Uint64(flagMemory, 0, "guest memory in MB")
	flags.Bool(flagNoKVM, false, "disable KVM acceleration")
	flags.Bool(flagDisplay, false, "enable the emulator display window")
	flags.Bool(flagVerbose, false, "increase guest debug verbosity")
	flags.StringSlice(flagAppend, nil, "additional kernel cmdline arguments")
	flags.String(flagGrace, "", "grace period before force-kill")
	flags.String(flagPrompt, "", "ready prompt pattern")
}

// addPatternFlags registers the detection pattern flags. Expressions
// prefixed with "re:" are regular expressions, anything else matches as
// literal substring.
func addPatternFlags(flags *pflag.FlagSet) {
	flags.StringSlice(flagSuccess, nil, "success pattern, repeatable")
	flags.StringSlice(flagFault, nil, "failure pattern, repeatable")
	flags.StringSlice(flagCheckpoint, nil, "checkpoint pattern, repeatable")
}

func newRunCommand(v *viper.Viper, cfg IO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Boot the target once and judge the outcome",
		Long: `Run boots the target synchronously, watches its console output for the
configured patterns and exits with the CI verdict. After the session ends
the persisted log artifact is audited for fault patterns and required
markers.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, v, cfg)
		},
	}

	flags := cmd.Flags()
	addInvocationFlags(flags)
	addPatternFlags(flags)
	flags.String(flagMode, "normal", "boot mode (normal|recovery)")
	flags.String(flagTimeout, "", "session deadline (default 5m)")
	flags.StringSlice(flagRequire, nil,
		"marker that must appear in the log artifact, repeatable")

	return cmd
}

func runOnce(cmd *cobra.Command, v *viper.Viper, cfg IO) error {
	spec, err := newInvocationSpec(v, v.GetString(flagMode))
	if err != nil {
		return err
	}

	store, err := artifact.NewStore(v.GetString(flagLogsDir))
	if err != nil {
		return fmt.Errorf("artifact store: %w", err)
	}

	ctrl, err := newController(v, spec, store)
	if err != nil {
		return err
	}

	patterns, err := sessionPatterns(v)
	if err != nil {
		return err
	}

	deadline := v.GetDuration(flagTimeout)

	sessCfg, err := newSessionConfig(spec, store, deadline, patterns)
	if err != nil {
		return err
	}

	required, err := parsePatterns(
		pattern.ClassSuccess,
		v.GetStringSlice(flagRequire),
	)
	if err != nil {
		return err
	}

	slog.Debug("Invocation",
		slog.String("command", sessCfg.Command),
		slog.Any("args", sessCfg.Args))

	result, err := ctrl.Run(cmd.Context(), sessCfg)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	faults, err := parsePatterns(
		pattern.ClassFailure,
		v.GetStringSlice(flagFault),
	)
	if err != nil {
		return err
	}

	audit, err := auditArtifact(store.Path(sessCfg.ID), faults, required)
	if err != nil {
		return err
	}

	code := exitcode.Evaluate(result, audit)

	printResult(cfg, sessCfg.ID, store.Path(sessCfg.ID), result, code)

	if code != exitcode.CodeOK {
		return &exitCodeError{code: code}
	}

	return nil
}

// auditArtifact re-checks the persisted log after the session ended. A
// missing artifact yields [exitcode.CodeNoArtifact].
func auditArtifact(
	path string,
	faults []pattern.Pattern,
	required []pattern.Pattern,
) (exitcode.Code, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return exitcode.CodeNoArtifact, nil
		}

		return 0, fmt.Errorf("open artifact: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	return exitcode.ScanLog(file, faults, required)
}

func printResult(
	cfg IO,
	id string,
	artifactPath string,
	result *session.Result,
	code exitcode.Code,
) {
	fmt.Fprintf(cfg.Stdout, "session:  %s\n", id)
	fmt.Fprintf(cfg.Stdout, "status:   %s\n", result.Status)
	fmt.Fprintf(cfg.Stdout, "elapsed:  %s\n", result.Elapsed)

	if result.Matched != nil {
		fmt.Fprintf(cfg.Stdout, "matched:  [%s] %s\n",
			result.Matched.Pattern.Class(), result.Matched.Line)
	}

	if result.Err != nil {
		fmt.Fprintf(cfg.Stdout, "error:    %v\n", result.Err)
	}

	fmt.Fprintf(cfg.Stdout, "artifact: %s\n", artifactPath)
	fmt.Fprintf(cfg.Stdout, "verdict:  %s (%d)\n", code, code.Int())
}
