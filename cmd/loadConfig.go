package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/zrax-x/apt-analysis-mcp/internal/config"
)

// loadConfig reads the connection settings. A fresh viper instance keeps the
// config keys apart from the flag bindings on the global one.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.New(), cfgConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
