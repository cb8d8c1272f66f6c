// Package sample holds the identifier rules shared by lookup and retrieval:
// a sample is addressed by its SHA256, written as 64 hexadecimal characters.
package sample

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// SHA256Len is the length of a hex-encoded SHA256 digest.
const SHA256Len = 64

var (
	ErrNoHashes    = errors.New("hash list is empty")
	ErrInvalidHash = errors.New("invalid SHA256 hash")
)

var validate = validator.New()

// IsSHA256 reports whether s is a bare hex SHA256 digest.
func IsSHA256(s string) bool {
	return validate.Var(s, "len=64,hexadecimal,excludesall=xX") == nil
}

// Normalize trims the given identifiers, drops blanks and duplicates while
// keeping first-seen order, and rejects anything that is not a SHA256.
func Normalize(hashes []string) ([]string, error) {
	seen := make(map[string]struct{}, len(hashes))
	out := make([]string, 0, len(hashes))
	var bad []string
	for _, h := range hashes {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if !IsSHA256(h) {
			bad = append(bad, h)
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	if len(bad) > 0 {
		return nil, errors.Wrapf(ErrInvalidHash, "%s (expected %d hex characters)", strings.Join(bad, ", "), SHA256Len)
	}
	if len(out) == 0 {
		return nil, ErrNoHashes
	}
	return out, nil
}
