// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bootwatch/bootwatch/internal/exitcode"
)

// IO provides input and output streams for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// exitCodeError carries a CI verdict through cobra's error return.
type exitCodeError struct {
	code exitcode.Code
}

// Error implements the [error] interface.
func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d (%s)", e.code.Int(), e.code)
}

// Run is the main entry point for the CLI command. It returns the process
// exit code.
func Run(ctx context.Context, args []string, cfg IO) int {
	v := viper.New()
	v.SetEnvPrefix("BOOTWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := newRootCommand(v, cfg)
	root.SetArgs(args)
	root.SetIn(cfg.Stdin)
	root.SetOut(cfg.Stdout)
	root.SetErr(cfg.Stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.code.Int()
	}

	slog.Error(err.Error())

	return 1
}

func newRootCommand(v *viper.Viper, cfg IO) *cobra.Command {
	root := &cobra.Command{
		Use:   "bootwatch",
		Short: "Bounded kernel boot supervisor",
		Long: `bootwatch supervises a kernel running under an emulator: it spawns the
target, streams and persists its console output, matches success, failure
and checkpoint patterns within a deadline and terminates the target
gracefully, forcefully if it has to. Exit codes follow the CI contract:
0 ok, 1 failed or timed out, 2 log artifact missing, 3 fault detected,
4 required markers absent.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(cfg.Stderr, v.GetBool(flagDebug))

			return readConfigFile(v)
		},
	}

	flags := root.PersistentFlags()
	flags.Bool(flagDebug, false, "enable debug logging")
	flags.String(flagConfig, "", "config file path (default: ./bootwatch.yaml)")
	flags.String(flagLogsDir, defaultLogsDir(), "session log artifact directory")
	flags.String(flagSocket, defaultSocketPath(), "daemon control socket path")

	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})

	root.AddCommand(
		newRunCommand(v, cfg),
		newServeCommand(v, cfg),
		newStartCommand(v, cfg),
		newStopCommand(v, cfg),
		newStatusCommand(v, cfg),
		newKillCommand(v, cfg),
		newSendCommand(v),
		newExecCommand(v, cfg),
		newWaitCommand(v, cfg),
		newLogsCommand(v, cfg),
		newCollectCommand(v, cfg),
		newVersionCommand(cfg),
	)

	// Subcommands share flag names, so each one binds its flag set to
	// viper only once it actually runs.
	for _, sub := range root.Commands() {
		sub.PreRunE = func(cmd *cobra.Command, _ []string) error {
			bindFlags(v, cmd.Flags())

			return nil
		}
	}

	return root
}

// readConfigFile merges an optional config file below the flag values. A
// missing default config file is not an error.
func readConfigFile(v *viper.Viper) error {
	if path := v.GetString(flagConfig); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bootwatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("read config: %w", err)
	}

	slog.Debug("Loaded config file",
		slog.String("path", v.ConfigFileUsed()))

	return nil
}

func defaultLogsDir() string {
	return filepath.Join(os.TempDir(), "bootwatch-logs")
}

func defaultSocketPath() string {
	return filepath.Join(os.TempDir(), "bootwatch.sock")
}

func newVersionCommand(cfg IO) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(_ *cobra.Command, _ []string) error {
			buildInfo, ok := debug.ReadBuildInfo()
			if !ok {
				return errors.New("read build info failed")
			}

			fmt.Fprintf(cfg.Stdout, "bootwatch %s\n", buildInfo.Main.Version)

			return nil
		},
	}
}
