package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/zrax-x/apt-analysis-mcp/internal/relay"
	"github.com/zrax-x/apt-analysis-mcp/internal/rulehash"
)

const (
	hA = "3123bbd5564f4381820fb8da5810bd4d9718b5c80a7e8f055961007c6f30daff"
	hB = "aa7f1e2b8c9d0e1f2a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f8091"
)

type fakeLookup struct {
	hashes          []string
	err             error
	rule, namespace string
}

func (f *fakeLookup) Lookup(rule, namespace string) ([]string, error) {
	f.rule, f.namespace = rule, namespace
	return f.hashes, f.err
}

type fakeDownloader struct {
	res *relay.Result
	err error
	got relay.Request
	n   int
}

func (f *fakeDownloader) Download(_ context.Context, req relay.Request) (*relay.Result, error) {
	f.n++
	f.got = req
	return f.res, f.err
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestDownloadSamples_Success(t *testing.T) {
	dl := &fakeDownloader{res: &relay.Result{OutputDir: "/tmp/samples", Downloaded: []string{hA, hB}}}
	s := New("test", &fakeLookup{}, dl, nil)

	res, err := s.handleDownloadSamples(context.Background(), call(map[string]any{
		"hash_list": []any{hA, hB},
	}))
	require.NoError(t, err)
	require.Equal(t, "Successfully downloaded 2 sample(s) to /tmp/samples", resultText(t, res))
	require.Equal(t, []string{hA, hB}, dl.got.Hashes)
	require.Empty(t, dl.got.OutputDir)
}

func TestDownloadSamples_OutputDirAndMissing(t *testing.T) {
	dl := &fakeDownloader{res: &relay.Result{OutputDir: "/cases/7", Downloaded: []string{hA}, Missing: []string{hB}}}
	s := New("test", &fakeLookup{}, dl, nil)

	res, err := s.handleDownloadSamples(context.Background(), call(map[string]any{
		"hash_list":  []any{hA, hB},
		"output_dir": "/cases/7",
	}))
	require.NoError(t, err)
	text := resultText(t, res)
	require.Contains(t, text, "Successfully downloaded 1 sample(s) to /cases/7")
	require.Contains(t, text, "(1): "+hB)
	require.Equal(t, "/cases/7", dl.got.OutputDir)
}

func TestDownloadSamples_FlattenedString(t *testing.T) {
	dl := &fakeDownloader{res: &relay.Result{OutputDir: "/tmp/samples", Downloaded: []string{hA, hB}}}
	s := New("test", &fakeLookup{}, dl, nil)

	_, err := s.handleDownloadSamples(context.Background(), call(map[string]any{
		"hash_list": hA + ", " + hB,
	}))
	require.NoError(t, err)
	require.Equal(t, []string{hA, hB}, dl.got.Hashes)
}

func TestDownloadSamples_FailureIsText(t *testing.T) {
	dl := &fakeDownloader{err: errors.Wrap(relay.ErrJumperConnect, "analyst@10.0.0.1:22")}
	s := New("test", &fakeLookup{}, dl, nil)

	res, err := s.handleDownloadSamples(context.Background(), call(map[string]any{"hash_list": []any{hA}}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Contains(t, resultText(t, res), "Failed to download samples: ")
	require.Contains(t, resultText(t, res), "jumper connection failed")
}

func TestGetRuleSHA256List_Success(t *testing.T) {
	lk := &fakeLookup{hashes: []string{hA, hB}}
	s := New("test", lk, &fakeDownloader{}, nil)

	res, err := s.handleGetRuleSHA256List(context.Background(), call(map[string]any{
		"rule":      "APT_Lazarus",
		"namespace": "./yara_rules/apt/pe_rules/abc.yara",
	}))
	require.NoError(t, err)
	require.Equal(t, "APT_Lazarus", lk.rule)
	require.Equal(t, "./yara_rules/apt/pe_rules/abc.yara", lk.namespace)

	var got rulehash.Result
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	require.True(t, got.Success)
	require.Equal(t, []string{hA, hB}, got.SHA256Hashes)
	require.Equal(t, 2, got.Count)
	require.Nil(t, got.Error)
}

func TestGetRuleSHA256List_NoMatch(t *testing.T) {
	lk := &fakeLookup{err: errors.Wrap(rulehash.ErrNoMatch, "rule APT_Missing")}
	s := New("test", lk, &fakeDownloader{}, nil)

	res, err := s.handleGetRuleSHA256List(context.Background(), call(map[string]any{"rule": "APT_Missing"}))
	require.NoError(t, err)
	text := resultText(t, res)
	require.JSONEq(t, `{"success":false,"sha256_hashes":[],"count":0,"error":"rule APT_Missing: no SHA256 hashes found"}`, text)
}

func TestDownloadRuleSamples(t *testing.T) {
	lk := &fakeLookup{hashes: []string{hA, hB}}
	dl := &fakeDownloader{res: &relay.Result{OutputDir: "/tmp/samples", Downloaded: []string{hA, hB}}}
	s := New("test", lk, dl, nil)

	res, err := s.handleDownloadRuleSamples(context.Background(), call(map[string]any{"rule": "APT_Lazarus"}))
	require.NoError(t, err)
	text := resultText(t, res)
	require.Contains(t, text, "Rule APT_Lazarus matched 2 sample(s).")
	require.Contains(t, text, "Successfully downloaded 2 sample(s) to /tmp/samples")
	require.Equal(t, []string{hA, hB}, dl.got.Hashes)
}

func TestDownloadRuleSamples_LookupFailureSkipsDownload(t *testing.T) {
	lk := &fakeLookup{err: rulehash.ErrMappingUnset}
	dl := &fakeDownloader{}
	s := New("test", lk, dl, nil)

	res, err := s.handleDownloadRuleSamples(context.Background(), call(map[string]any{"rule": "APT_Lazarus"}))
	require.NoError(t, err)
	require.Contains(t, resultText(t, res), "not configured")
	require.Equal(t, 0, dl.n)
}

func TestServer_ListsTools(t *testing.T) {
	s := New("test", &fakeLookup{}, &fakeDownloader{}, nil)
	resp := s.MCP().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{ToolDownloadSamples, ToolGetRuleSHA256List, ToolDownloadRuleSamples} {
		require.Contains(t, string(b), `"name":"`+name+`"`)
	}
	require.Contains(t, string(b), `"hash_list"`)
}

func TestDownloadSamples_ListsFailedSamples(t *testing.T) {
	dl := &fakeDownloader{res: &relay.Result{
		OutputDir:  "/tmp/samples",
		Downloaded: []string{hA},
		Failed:     []relay.Failure{{SHA256: hB, Reason: "copy /data/" + hB + ": permission denied"}},
	}}
	s := New("test", &fakeLookup{}, dl, nil)

	res, err := s.handleDownloadSamples(context.Background(), call(map[string]any{"hash_list": []any{hA, hB}}))
	require.NoError(t, err)
	text := resultText(t, res)
	require.Contains(t, text, "Successfully downloaded 1 sample(s) to /tmp/samples")
	require.Contains(t, text, "Found but not retrievable (1):")
	require.Contains(t, text, hB+": copy /data/"+hB+": permission denied")
}

func TestDownloadSamples_FailureNamesWrittenFiles(t *testing.T) {
	dl := &fakeDownloader{
		res: &relay.Result{OutputDir: "/tmp/samples", Downloaded: []string{hA}},
		err: errors.New("copy: connection lost"),
	}
	s := New("test", &fakeLookup{}, dl, nil)

	res, err := s.handleDownloadSamples(context.Background(), call(map[string]any{"hash_list": []any{hA, hB}}))
	require.NoError(t, err)
	text := resultText(t, res)
	require.Contains(t, text, "Failed to download samples: copy: connection lost")
	require.Contains(t, text, "Already written to /tmp/samples before the failure (1): "+hA)
}
