package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
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

// Domain-specific hash types
type (
	// PipelineVersion fingerprints the feature column contract.
	PipelineVersion Hash
	// CacheKey identifies a (position, feature vector) pair.
	CacheKey Hash
)

func (h PipelineVersion) String() string { return Hash(h).String() }
func (h CacheKey) String() string        { return Hash(h).String() }

// ComputePipelineVersion hashes the ordered feature column list. The
// column order is a pure function of this value: two pipelines with the
// same version produce byte-identical vectors for the same input.
func ComputePipelineVersion(columns []string) PipelineVersion {
	var data strings.Builder
	for _, col := range columns {
		data.WriteString(col)
		data.WriteByte('\n')
	}
	return PipelineVersion(NewHash([]byte(data.String())))
}

// ComputeCacheKey hashes a position identifier with the sorted
// (name, value) pairs of a feature payload. Deterministic regardless of
// map iteration order.
func ComputeCacheKey(position string, features map[string]float64) CacheKey {
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)

	var data strings.Builder
	data.WriteString(position)
	for _, name := range names {
		data.WriteByte(':')
		data.WriteString(name)
		data.WriteByte('=')
		data.WriteString(strconv.FormatFloat(features[name], 'g', -1, 64))
	}
	return CacheKey(NewHash([]byte(data.String())))
}
