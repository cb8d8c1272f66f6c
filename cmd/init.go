package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zrax-x/apt-analysis-mcp/internal/config"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgConfigPath, "config", "c", "", "Path to config file (JSON, YAML or TOML); defaults to ./config.*")
	rootCmd.PersistentFlags().StringVar(&cfgLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	bindEnv()

	cobra.OnInitialize(func() {
		if v := viper.GetString("config"); v != "" {
			cfgConfigPath = v
		}
		if v := viper.GetString("log-level"); v != "" {
			cfgLogLevel = v
		}
	})

	lookupCmd.Flags().StringVarP(&lookupRule, "rule", "r", "", "YARA rule name")
	lookupCmd.Flags().StringVarP(&lookupNamespace, "namespace", "n", "", "Exact rule namespace (.yara file path)")

	downloadCmd.Flags().StringVarP(&downloadRule, "rule", "r", "", "Download every sample matched by this YARA rule")
	downloadCmd.Flags().StringVarP(&downloadNamespace, "namespace", "n", "", "Exact rule namespace, with --rule")
	downloadCmd.Flags().StringVarP(&downloadOut, "out", "o", "", "Output directory (default: local_download_dir)")
	downloadCmd.Flags().StringVar(&downloadReport, "report", "", "Write a YAML report of the batch to this path")

	verifyCmd.Flags().BoolVar(&verifyConnect, "connect", false, "Also open the jumper/target tunnel and check the workdir")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(verifyCmd)
}

// bindEnv lets APT_ANALYSIS_CONFIG and APT_ANALYSIS_LOG_LEVEL stand in for the
// root flags.
func bindEnv() {
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
