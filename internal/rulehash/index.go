package rulehash

// Index is a lookup backed by a mapping file that is re-read on every query,
// so a mapping regenerated by the scanner is picked up without a restart.
type Index struct {
	Path string
}

// Lookup loads the mapping and queries it.
func (i Index) Lookup(rule, namespace string) ([]string, error) {
	t, err := Load(i.Path)
	if err != nil {
		return nil, err
	}
	return t.Lookup(rule, namespace)
}

// Result is the caller-facing shape of a lookup. Error is nil on success so
// it serialises as JSON null.
type Result struct {
	Success      bool     `json:"success"`
	SHA256Hashes []string `json:"sha256_hashes"`
	Count        int      `json:"count"`
	Error        *string  `json:"error"`
}

// NewResult folds a Lookup return into a Result. A failed lookup always
// carries an empty, non-nil hash list.
func NewResult(hashes []string, err error) Result {
	if err != nil {
		msg := err.Error()
		return Result{SHA256Hashes: []string{}, Error: &msg}
	}
	if hashes == nil {
		hashes = []string{}
	}
	return Result{Success: true, SHA256Hashes: hashes, Count: len(hashes)}
}
