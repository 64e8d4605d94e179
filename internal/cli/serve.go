// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bootwatch/bootwatch/internal/artifact"
	"github.com/bootwatch/bootwatch/internal/daemon"
	"github.com/bootwatch/bootwatch/internal/session"
)

func newServeCommand(v *viper.Viper, cfg IO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the session control daemon",
		Long: `Serve listens on the control socket and manages sessions on behalf of
the thin client commands. It runs in the foreground until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd, v, cfg)
		},
	}

	flags := cmd.Flags()
	addInvocationFlags(flags)
	addPatternFlags(flags)
	flags.String(flagTimeout, "", "default session deadline (default 5m)")
	flags.String(flagLogFile, "",
		"rotating diagnostic log file (default: <logs-dir>/bootwatch.log)")

	return cmd
}

func serve(cmd *cobra.Command, v *viper.Viper, cfg IO) error {
	store, err := artifact.NewStore(v.GetString(flagLogsDir))
	if err != nil {
		return fmt.Errorf("artifact store: %w", err)
	}

	logFile := v.GetString(flagLogFile)
	if logFile == "" {
		logFile = filepath.Join(store.Dir(), "bootwatch.log")
	}

	logCloser := setupDaemonLogging(logFile, v.GetBool(flagDebug))
	defer func() {
		_ = logCloser.Close()
	}()

	// Validate the invocation once up front so misconfiguration fails the
	// serve command instead of the first start request.
	spec, err := newInvocationSpec(v, v.GetString(flagMode))
	if err != nil {
		return err
	}

	ctrl, err := newController(v, spec, store)
	if err != nil {
		return err
	}

	defaultPatterns, err := sessionPatterns(v)
	if err != nil {
		return err
	}

	deadline := v.GetDuration(flagTimeout)

	launch := func(params daemon.StartParams) (session.Config, error) {
		spec, err := newInvocationSpec(v, params.Mode)
		if err != nil {
			return session.Config{}, err
		}

		if params.Display {
			spec.Display = true
		}

		return newSessionConfig(spec, store, deadline, defaultPatterns)
	}

	sockPath := v.GetString(flagSocket)
	server := daemon.NewServer(sockPath, ctrl, launch)

	fmt.Fprintf(cfg.Stdout, "listening on %s\n", sockPath)

	return server.Serve(cmd.Context())
}
