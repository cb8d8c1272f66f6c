// Package cmd implements the apt-analysis command-line interface.
//
// The root command carries the shared --config and --log-level flags. serve
// runs the MCP tool server on stdio for an agent client; lookup, download and
// verify expose the same operations to an analyst at a terminal.
//
// Start with init.go for the flag and environment wiring, serveCmd.go for how
// the tool server is assembled, and downloadCmd.go for the terminal flow.
package cmd
