package cmd

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/zrax-x/apt-analysis-mcp/internal/config"
	"github.com/zrax-x/apt-analysis-mcp/internal/relay"
	"github.com/zrax-x/apt-analysis-mcp/internal/tools"
)

// Version is the CLI version string injected at build time via -ldflags.
var Version = "0.1.0"

var (
	// Root flags, overridable through APT_ANALYSIS_CONFIG and
	// APT_ANALYSIS_LOG_LEVEL.
	cfgConfigPath string
	cfgLogLevel   string

	lookupRule      string
	lookupNamespace string

	downloadRule      string
	downloadNamespace string
	downloadOut       string
	downloadReport    string

	verifyConnect bool
)

// downloader is what the commands need from the transfer layer.
type downloader interface {
	tools.Downloader
	Check(ctx context.Context) error
}

// Allow tests to stub the transfer layer
var newDownloaderFunc = func(cfg *config.Config, logger *log.Logger) downloader {
	return relay.New(cfg, logger)
}
