package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validate the configuration and optionally test the SSH tunnel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Config OK")
		if !verifyConnect {
			return nil
		}

		logger, err := newLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := newDownloaderFunc(cfg, logger).Check(ctx); err != nil {
			return fmt.Errorf("connection check failed: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Connection OK (%s via %s)\n", cfg.Target.Addr(), cfg.Jumper.Addr())
		return nil
	},
}
