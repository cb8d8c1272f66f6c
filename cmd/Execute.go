package cmd

import (
	"fmt"
	"os"
)

// Execute runs the root command and exits 1 on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		exitFunc(1)
	}
}
