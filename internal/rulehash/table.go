// Package rulehash answers "which samples did this YARA rule match" from the
// Rule_Hash_Mapping.csv produced by the scanning pipeline.
//
// The CSV has a header row and at least the columns rule, namespace and
// sha256List. namespace is the path of the .yara file that defines the rule,
// which disambiguates rules that share a name. sha256List holds several
// digests in one cell separated by commas, semicolons or whitespace. Any other
// columns (md5List, sha1List, counts) are ignored.
package rulehash

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/zrax-x/apt-analysis-mcp/internal/sample"
)

// Column names, compared case-insensitively.
const (
	ColumnRule      = "rule"
	ColumnNamespace = "namespace"
	ColumnSHA256    = "sha256list"
)

var (
	ErrMappingUnset      = errors.New("rule hash mapping file is not configured")
	ErrMappingUnreadable = errors.New("rule hash mapping file is unreadable")
	ErrMalformed         = errors.New("rule hash mapping file is malformed")
	ErrRuleRequired      = errors.New("rule name is required")
	ErrNoMatch           = errors.New("no SHA256 hashes found")
)

// Entry is one row of the mapping.
type Entry struct {
	Rule      string
	Namespace string
	SHA256    []string
}

// Table is an immutable in-memory copy of the mapping file.
type Table struct {
	entries []Entry
}

// Load reads and parses the mapping at path.
func Load(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrMappingUnset
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrMappingUnreadable, "%s: %v", path, err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return t, nil
}

// Parse reads a mapping from r.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	// a stray quote inside an unquoted cell must not take the whole table down
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.Wrap(ErrMalformed, "missing header row")
		}
		return nil, errors.Wrapf(ErrMalformed, "could not read header: %v", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		// a UTF-8 BOM from spreadsheet exports sticks to the first column
		name = strings.TrimPrefix(name, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	idx := make(map[string]int, 3)
	for _, want := range []string{ColumnRule, ColumnNamespace, ColumnSHA256} {
		i, ok := cols[want]
		if !ok {
			return nil, errors.Wrapf(ErrMalformed, "could not find %q column", want)
		}
		idx[want] = i
	}

	raw := func(record []string, col string) string {
		if i := idx[col]; i < len(record) {
			return record[i]
		}
		return ""
	}

	t := &Table{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(ErrMalformed, err.Error())
		}
		rule := strings.TrimSpace(raw(record, ColumnRule))
		if rule == "" {
			continue
		}
		t.entries = append(t.entries, Entry{
			Rule:      rule,
			Namespace: raw(record, ColumnNamespace),
			SHA256:    splitHashes(raw(record, ColumnSHA256)),
		})
	}
	return t, nil
}

// splitHashes keeps only well-formed SHA256 tokens; anything else in the cell
// cannot be used to address a file on the storage host.
func splitHashes(cell string) []string {
	tokens := strings.FieldsFunc(cell, func(r rune) bool {
		switch r {
		case ',', ';', ' ', '\t', '\n', '\r':
			return true
		}
		return false
	})
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if sample.IsSHA256(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.entries) }

// Lookup returns the deduplicated SHA256 values for rule. An empty namespace
// aggregates every row with that rule name; otherwise only rows whose
// namespace is byte-for-byte equal contribute. Rule names are compared after
// trimming surrounding whitespace.
func (t *Table) Lookup(rule, namespace string) ([]string, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil, ErrRuleRequired
	}

	seen := make(map[string]struct{})
	var out []string
	for _, e := range t.entries {
		if e.Rule != rule {
			continue
		}
		if namespace != "" && e.Namespace != namespace {
			continue
		}
		for _, h := range e.SHA256 {
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		if namespace != "" {
			return nil, errors.Wrapf(ErrNoMatch, "rule %s in namespace %s", rule, namespace)
		}
		return nil, errors.Wrapf(ErrNoMatch, "rule %s", rule)
	}
	return out, nil
}
