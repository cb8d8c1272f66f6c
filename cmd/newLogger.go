package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// newLogger writes to w, which is stderr in every command: stdout carries MCP
// frames under serve and results elsewhere.
func newLogger(w io.Writer) (*log.Logger, error) {
	lvl, err := log.ParseLevel(cfgLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", cfgLogLevel, err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "apt-analysis",
	}), nil
}
