// Package report writes a YAML record of one download batch.
package report

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zrax-x/apt-analysis-mcp/internal/relay"
)

// Report is the top-level document. Hash lists are never nil so they render
// as [] rather than null.
type Report struct {
	Name       string         `yaml:"name"`
	Generated  string         `yaml:"generated"`
	RunID      string         `yaml:"run_id,omitempty"`
	Rule       string         `yaml:"rule,omitempty"`
	Namespace  string         `yaml:"namespace,omitempty"`
	OutputDir  string         `yaml:"output_dir,omitempty"`
	Requested  []string       `yaml:"requested"`
	Downloaded []string       `yaml:"downloaded"`
	Missing    []string       `yaml:"missing"`
	Failed     []FailedSample `yaml:"failed"`
	Bytes      int64          `yaml:"bytes"`
	Error      string         `yaml:"error,omitempty"`
}

// FailedSample is a sample that exists on the target but could not be copied.
type FailedSample struct {
	SHA256 string `yaml:"sha256"`
	Reason string `yaml:"reason"`
}

// New starts a report stamped with the current time.
func New(name string) *Report {
	return &Report{
		Name:       name,
		Generated:  time.Now().Format(time.RFC3339),
		Requested:  []string{},
		Downloaded: []string{},
		Missing:    []string{},
		Failed:     []FailedSample{},
	}
}

// SetResult copies a batch outcome into the report. res may be nil when the
// batch failed before anything was attempted.
func (r *Report) SetResult(res *relay.Result, err error) {
	if err != nil {
		r.Error = err.Error()
	}
	if res == nil {
		return
	}
	r.RunID = res.RunID
	r.OutputDir = res.OutputDir
	r.Bytes = res.Bytes
	r.Requested = orEmpty(res.Requested)
	r.Downloaded = orEmpty(res.Downloaded)
	r.Missing = orEmpty(res.Missing)
	r.Failed = make([]FailedSample, 0, len(res.Failed))
	for _, f := range res.Failed {
		r.Failed = append(r.Failed, FailedSample{SHA256: f.SHA256, Reason: f.Reason})
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Write encodes r as YAML with two-space indentation.
func Write(w io.Writer, r *Report) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		_ = enc.Close()
		return err
	}
	_ = enc.Close()
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(buf.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile writes r to path, creating parent directories.
func WriteFile(path string, r *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create report dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create report")
	}
	if err := Write(f, r); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "write report")
	}
	return f.Close()
}
