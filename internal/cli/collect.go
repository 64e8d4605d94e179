// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bootwatch/bootwatch/internal/artifact"
)

func newCollectCommand(v *viper.Viper, cfg IO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect [session-id]...",
		Short: "Bundle session log artifacts into a cpio archive",
		Long: `Collect exports persisted session logs as a single cpio archive, for
attaching to CI results. Without arguments all sessions are bundled.`,
		RunE: func(_ *cobra.Command, args []string) error {
			return collect(v, cfg, args)
		},
	}

	flags := cmd.Flags()
	flags.StringP(flagOutput, "o", "bootwatch-logs.cpio", "archive output path")

	return cmd
}

func collect(v *viper.Viper, cfg IO, ids []string) error {
	store, err := artifact.NewStore(v.GetString(flagLogsDir))
	if err != nil {
		return fmt.Errorf("artifact store: %w", err)
	}

	if len(ids) == 0 {
		ids, err = store.List()
		if err != nil {
			return fmt.Errorf("list artifacts: %w", err)
		}
	}

	if len(ids) == 0 {
		return fmt.Errorf("no artifacts in %s", store.Dir())
	}

	output := v.GetString(flagOutput)

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	err = store.Export(file, ids...)
	if err != nil {
		_ = file.Close()

		return fmt.Errorf("export artifacts: %w", err)
	}

	err = file.Close()
	if err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	fmt.Fprintf(cfg.Stdout, "archived %d artifacts to %s\n", len(ids), output)

	return nil
}
