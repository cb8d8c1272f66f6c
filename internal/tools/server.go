// Package tools exposes the lookup and download operations as MCP tools over
// stdio. Domain failures are returned as tool results, never as protocol
// errors, so the calling agent can read and act on them.
package tools

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/zrax-x/apt-analysis-mcp/internal/relay"
)

// ServerName is the name announced to MCP clients.
const ServerName = "apt-analysis"

// Tool names.
const (
	ToolDownloadSamples     = "download_samples"
	ToolGetRuleSHA256List   = "get_rule_sha256_list"
	ToolDownloadRuleSamples = "download_rule_samples"
)

// Lookuper resolves a rule to sample hashes.
type Lookuper interface {
	Lookup(rule, namespace string) ([]string, error)
}

// Downloader retrieves samples by hash.
type Downloader interface {
	Download(ctx context.Context, req relay.Request) (*relay.Result, error)
}

// Server wires the handlers into an MCP server.
type Server struct {
	mcp    *server.MCPServer
	lookup Lookuper
	dl     Downloader
	logger *log.Logger
}

// New registers every tool. A nil logger discards output.
func New(version string, lookup Lookuper, dl Downloader, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		mcp:    server.NewMCPServer(ServerName, version, server.WithToolCapabilities(false), server.WithRecovery()),
		lookup: lookup,
		dl:     dl,
		logger: logger.WithPrefix("tools"),
	}

	s.mcp.AddTool(mcp.NewTool(ToolDownloadSamples,
		mcp.WithDescription("Download malware samples by SHA256 from the sample storage server through the jump host."),
		mcp.WithArray("hash_list",
			mcp.Required(),
			mcp.Description("SHA256 hashes of the samples to download (64 hex characters each)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("output_dir",
			mcp.Description("Local directory for the samples; defaults to the configured local_download_dir"),
		),
	), s.handleDownloadSamples)

	s.mcp.AddTool(mcp.NewTool(ToolGetRuleSHA256List,
		mcp.WithDescription("List the SHA256 hashes of samples matched by a YARA rule, from the rule hash mapping CSV."),
		mcp.WithString("rule",
			mcp.Required(),
			mcp.Description("YARA rule name, e.g. APT_Lazarus_Loader"),
		),
		mcp.WithString("namespace",
			mcp.Description("Exact rule namespace (the .yara file path) to disambiguate rules sharing a name"),
		),
	), s.handleGetRuleSHA256List)

	s.mcp.AddTool(mcp.NewTool(ToolDownloadRuleSamples,
		mcp.WithDescription("Resolve a YARA rule to its matched samples and download them."),
		mcp.WithString("rule",
			mcp.Required(),
			mcp.Description("YARA rule name"),
		),
		mcp.WithString("namespace",
			mcp.Description("Exact rule namespace"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Local directory for the samples; defaults to the configured local_download_dir"),
		),
	), s.handleDownloadRuleSamples)

	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Serve speaks MCP on in/out until ctx is cancelled or in is closed. Protocol
// errors go to the component logger; out carries nothing but MCP frames.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}))
	s.logger.Info("serving MCP over stdio", "name", ServerName)
	return stdio.Listen(ctx, in, out)
}
