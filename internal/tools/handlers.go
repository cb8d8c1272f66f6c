package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/zrax-x/apt-analysis-mcp/internal/relay"
	"github.com/zrax-x/apt-analysis-mcp/internal/rulehash"
)

func (s *Server) handleDownloadSamples(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hashes := hashListArg(req)
	outDir := req.GetString("output_dir", "")
	s.logger.Info("download_samples", "samples", len(hashes), "output_dir", outDir)

	res, err := s.dl.Download(ctx, relay.Request{Hashes: hashes, OutputDir: outDir})
	return mcp.NewToolResultText(downloadText(res, err)), nil
}

func (s *Server) handleGetRuleSHA256List(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rule := req.GetString("rule", "")
	namespace := req.GetString("namespace", "")
	s.logger.Info("get_rule_sha256_list", "rule", rule, "namespace", namespace)

	hashes, err := s.lookup.Lookup(rule, namespace)
	if err != nil {
		s.logger.Warn("lookup failed", "rule", rule, "err", err)
	}
	b, err := json.Marshal(rulehash.NewResult(hashes, err))
	if err != nil {
		return mcp.NewToolResultError("encode lookup result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleDownloadRuleSamples(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rule := req.GetString("rule", "")
	namespace := req.GetString("namespace", "")
	outDir := req.GetString("output_dir", "")
	s.logger.Info("download_rule_samples", "rule", rule, "namespace", namespace, "output_dir", outDir)

	hashes, err := s.lookup.Lookup(rule, namespace)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Failed to download samples: %v", err)), nil
	}
	res, err := s.dl.Download(ctx, relay.Request{Hashes: hashes, OutputDir: outDir})
	text := fmt.Sprintf("Rule %s matched %d sample(s).\n%s", rule, len(hashes), downloadText(res, err))
	return mcp.NewToolResultText(text), nil
}

// hashListArg accepts the documented array form and, for clients that flatten
// it, a single string of hashes separated by commas or whitespace.
func hashListArg(req mcp.CallToolRequest) []string {
	if v, ok := req.GetArguments()["hash_list"].(string); ok {
		return strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
		})
	}
	return req.GetStringSlice("hash_list", nil)
}

func downloadText(res *relay.Result, err error) string {
	var b strings.Builder
	if err != nil {
		fmt.Fprintf(&b, "Failed to download samples: %v", err)
		if res != nil && len(res.Downloaded) > 0 {
			fmt.Fprintf(&b, "\nAlready written to %s before the failure (%d): %s", res.OutputDir, len(res.Downloaded), strings.Join(res.Downloaded, ", "))
		}
		return b.String()
	}
	fmt.Fprintf(&b, "Successfully downloaded %d sample(s) to %s", len(res.Downloaded), res.OutputDir)
	if len(res.Missing) > 0 {
		fmt.Fprintf(&b, "\nNot found on the storage server (%d): %s", len(res.Missing), strings.Join(res.Missing, ", "))
	}
	if len(res.Failed) > 0 {
		fmt.Fprintf(&b, "\nFound but not retrievable (%d):", len(res.Failed))
		for _, f := range res.Failed {
			fmt.Fprintf(&b, "\n  %s: %s", f.SHA256, f.Reason)
		}
	}
	return b.String()
}
