package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
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

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Short returns the first 12 hex characters, enough for log lines
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// ComputeSequenceHash hashes an ordered list of values. Order matters:
// the same values in a different order produce a different hash.
func ComputeSequenceHash(values []fmt.Stringer) Hash {
	var data strings.Builder
	for i, v := range values {
		if i > 0 {
			data.WriteByte('|')
		}
		data.WriteString(v.String())
	}
	return NewHash([]byte(data.String()))
}
