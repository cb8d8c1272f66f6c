package relay

import (
	"fmt"
	"strings"
)

// problems lists the missing and failed samples on one line.
func (r *Result) problems() string {
	var parts []string
	if len(r.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(r.Missing, ", "))
	}
	if len(r.Failed) > 0 {
		failed := make([]string, 0, len(r.Failed))
		for _, f := range r.Failed {
			failed = append(failed, fmt.Sprintf("%s (%s)", f.SHA256, f.Reason))
		}
		parts = append(parts, "failed: "+strings.Join(failed, ", "))
	}
	return strings.Join(parts, "; ")
}
