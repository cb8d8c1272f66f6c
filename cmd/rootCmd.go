package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "apt-analysis",
	Short: "Look up and retrieve APT malware samples for analysis",
	Long: "Resolves YARA rule matches to sample SHA256 hashes using the rule hash mapping CSV, and downloads " +
		"samples from the storage server through an SSH jump host. Run `serve` to expose both as MCP tools.",
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
}
