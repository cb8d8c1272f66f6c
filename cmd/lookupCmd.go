package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zrax-x/apt-analysis-mcp/internal/rulehash"
)

var errLookupFailed = errors.New("lookup failed")

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Print the SHA256 hashes matched by a YARA rule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if lookupRule == "" {
			return errors.New("--rule is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		res := rulehash.NewResult(rulehash.Index{Path: cfg.RuleHashMappingFile}.Lookup(lookupRule, lookupNamespace))
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed writing output: %w", err)
		}
		if !res.Success {
			return errLookupFailed
		}
		return nil
	},
}
