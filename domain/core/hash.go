package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex digits, enough to tell sources apart in logs
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ComputeSelectionHash fingerprints a source identity together with a set of
// keyed filter values. Keys are sorted, so map order never changes the hash.
func ComputeSelectionHash(source string, filters map[string]interface{}) Hash {
	var data strings.Builder
	data.WriteString(source)

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		data.WriteString("\x00")
		data.WriteString(key)
		data.WriteString("=")
		data.WriteString(fmt.Sprintf("%v", filters[key]))
	}

	return NewHash([]byte(data.String()))
}
