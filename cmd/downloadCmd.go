package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zrax-x/apt-analysis-mcp/internal/relay"
	"github.com/zrax-x/apt-analysis-mcp/internal/report"
	"github.com/zrax-x/apt-analysis-mcp/internal/rulehash"
)

var downloadCmd = &cobra.Command{
	Use:   "download [SHA256...]",
	Short: "Download samples by hash, or every sample matched by --rule",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case downloadRule != "" && len(args) > 0:
			return errors.New("give either hashes or --rule, not both")
		case downloadRule == "" && len(args) == 0:
			return errors.New("at least one SHA256 or --rule is required")
		case downloadRule == "" && downloadNamespace != "":
			return errors.New("--namespace requires --rule")
		}

		logger, err := newLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		name := "download"
		hashes := args
		if downloadRule != "" {
			name = downloadRule
			hashes, err = rulehash.Index{Path: cfg.RuleHashMappingFile}.Lookup(downloadRule, downloadNamespace)
			if err != nil {
				return fmt.Errorf("failed to resolve rule: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Rule %s matched %d sample(s)\n", downloadRule, len(hashes))
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Downloading %d sample(s) from %s via %s\n", len(hashes), cfg.Target.Addr(), cfg.Jumper.Addr())
		res, dlErr := newDownloaderFunc(cfg, logger).Download(ctx, relay.Request{Hashes: hashes, OutputDir: downloadOut})

		if downloadReport != "" {
			rep := report.New(name)
			rep.Rule, rep.Namespace = downloadRule, downloadNamespace
			rep.SetResult(res, dlErr)
			if err := report.WriteFile(downloadReport, rep); err != nil {
				return fmt.Errorf("failed writing report: %w", err)
			}
		}
		if dlErr != nil {
			return fmt.Errorf("download failed: %w", dlErr)
		}

		for _, h := range res.Downloaded {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(res.OutputDir, h))
		}
		for _, h := range res.Missing {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Missing on target: %s\n", h)
		}
		for _, f := range res.Failed {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Failed: %s: %s\n", f.SHA256, f.Reason)
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Done. %d sample(s) written to %s\n", len(res.Downloaded), res.OutputDir)
		return nil
	},
}
