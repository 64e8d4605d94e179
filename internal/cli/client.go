// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bootwatch/bootwatch/internal/daemon"
)

func newDaemonClient(v *viper.Viper) *daemon.Client {
	return daemon.NewClient(v.GetString(flagSocket))
}

func newStartCommand(v *viper.Viper, cfg IO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a session via the daemon",
		RunE: func(_ *cobra.Command, _ []string) error {
			params := daemon.StartParams{
				Mode:    v.GetString(flagMode),
				Display: v.GetBool(flagDisplay),
			}

			if timeout := v.GetString(flagTimeout); timeout != "" {
				params.Deadline = timeout
			}

			params.Patterns = patternSpecs(v)

			result, err := newDaemonClient(v).Start(params)
			if err != nil {
				return err
			}

			fmt.Fprintf(cfg.Stdout, "session:  %s\n", result.ID)
			fmt.Fprintf(cfg.Stdout, "pid:      %d\n", result.PID)
			fmt.Fprintf(cfg.Stdout, "deadline: %s\n", result.Deadline)

			return nil
		},
	}

	flags := cmd.Flags()
	addPatternFlags(flags)
	flags.String(flagMode, "", "boot mode (normal|recovery)")
	flags.Bool(flagDisplay, false, "enable the emulator display window")
	flags.String(flagTimeout, "", "session deadline")

	return cmd
}

// patternSpecs collects the pattern flags into their wire form.
func patternSpecs(v *viper.Viper) []daemon.PatternSpec {
	var specs []daemon.PatternSpec

	for _, group := range []struct {
		class string
		flag  string
	}{
		{"success", flagSuccess},
		{"failure", flagFault},
		{"checkpoint", flagCheckpoint},
	} {
		for _, expr := range v.GetStringSlice(group.flag) {
			specs = append(specs, daemon.PatternSpec{
				Class: group.class,
				Expr:  expr,
			})
		}
	}

	return specs
}

func newStopCommand(v *viper.Viper, cfg IO) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the active session",
		RunE: func(_ *cobra.Command, _ []string) error {
			result, err := newDaemonClient(v).Stop()
			if err != nil {
				return err
			}

			printRunResult(cfg, result)

			return nil
		},
	}
}

func newStatusCommand(v *viper.Viper, cfg IO) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session state and target processes on the host",
		RunE: func(_ *cobra.Command, _ []string) error {
			client := newDaemonClient(v)

			status, err := client.Status()
			if err != nil {
				return err
			}

			running, err := client.Running()
			if err != nil {
				return err
			}

			fmt.Fprintf(cfg.Stdout, "state:    %s\n", status.State)

			if status.ID != "" {
				fmt.Fprintf(cfg.Stdout, "session:  %s\n", status.ID)
				fmt.Fprintf(cfg.Stdout, "mode:     %s\n", status.Mode)
				fmt.Fprintf(cfg.Stdout, "pid:      %d\n", status.PID)
			}

			if status.Uptime != "" {
				fmt.Fprintf(cfg.Stdout, "uptime:   %s\n", status.Uptime)
			}

			if status.Result != nil {
				printRunResult(cfg, status.Result)
			}

			fmt.Fprintf(cfg.Stdout, "running:  %d (tracked: %t)\n",
				running.Count, running.Tracked)

			return nil
		},
	}
}

func newKillCommand(v *viper.Viper, cfg IO) *cobra.Command {
	return &cobra.Command{
		Use:   "kill",
		Short: "Force-kill all target processes on the host",
		RunE: func(_ *cobra.Command, _ []string) error {
			result, err := newDaemonClient(v).Kill()
			if err != nil {
				return err
			}

			fmt.Fprintf(cfg.Stdout, "killed: %d\n", result.Killed)

			return nil
		},
	}
}

func newSendCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "send <text>...",
		Short: "Send input to the active session without waiting",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return newDaemonClient(v).Send(strings.Join(args, " "))
		},
	}
}

func newExecCommand(v *viper.Viper, cfg IO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <text>...",
		Short: "Send input and wait for a pattern in the output",
		RunE: func(_ *cobra.Command, args []string) error {
			params := daemon.RunParams{
				Text:    strings.Join(args, " "),
				Timeout: v.GetString(flagTimeout),
			}

			if expr := v.GetString(flagWait); expr != "" {
				params.Wait = &daemon.PatternSpec{
					Class: v.GetString(flagWaitClass),
					Expr:  expr,
				}
			}

			result, err := newDaemonClient(v).Run(params)
			if err != nil {
				return err
			}

			for _, line := range result.Output {
				fmt.Fprintln(cfg.Stdout, line)
			}

			printRunResult(cfg, result)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.String(flagWait, "", "pattern to wait for")
	flags.String(flagWaitClass, "checkpoint", "class of the wait pattern")
	flags.String(flagTimeout, "10s", "wait timeout")

	return cmd
}

func newWaitCommand(v *viper.Viper, cfg IO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait until the target's ready prompt appears",
		RunE: func(_ *cobra.Command, _ []string) error {
			timeout := v.GetDuration(flagTimeout)
			if timeout <= 0 {
				timeout = 10 * time.Second
			}

			result, err := newDaemonClient(v).WaitPrompt(timeout)
			if err != nil {
				return err
			}

			printRunResult(cfg, result)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.String(flagTimeout, "10s", "wait timeout")

	return cmd
}

func newLogsCommand(v *viper.Viper, cfg IO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the last buffered console lines",
		RunE: func(_ *cobra.Command, _ []string) error {
			lines, err := newDaemonClient(v).Logs(v.GetInt(flagCount))
			if err != nil {
				return err
			}

			for _, line := range lines {
				fmt.Fprintln(cfg.Stdout, line)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntP(flagCount, "n", 25, "number of lines")

	return cmd
}

func printRunResult(cfg IO, result *daemon.RunResult) {
	if result.Status != "" {
		fmt.Fprintf(cfg.Stdout, "status:   %s\n", result.Status)
	}

	fmt.Fprintf(cfg.Stdout, "elapsed:  %s\n", result.Elapsed)

	if result.Matched != nil {
		fmt.Fprintf(cfg.Stdout, "matched:  [%s] %s\n",
			result.Matched.Class, result.Matched.Line)
	}

	if result.Err != "" {
		fmt.Fprintf(cfg.Stdout, "error:    %s\n", result.Err)
	}
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
}
