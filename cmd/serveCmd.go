package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zrax-x/apt-analysis-mcp/internal/rulehash"
	"github.com/zrax-x/apt-analysis-mcp/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the apt-analysis MCP tools on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.RuleHashMappingFile == "" {
			logger.Warn("rule_hash_mapping_file is not set; rule lookups will fail")
		}

		srv := tools.New(Version,
			rulehash.Index{Path: cfg.RuleHashMappingFile},
			newDownloaderFunc(cfg, logger),
			logger,
		)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}
