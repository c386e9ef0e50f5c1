// Package determinism provides content hashing with a stable encoding.
// Schedule fingerprints and request input hashes are both built here so
// the same content always hashes the same way.
package determinism

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// ContentHash is a SHA-256 hash for content integrity
type ContentHash [32]byte

// ComputeHash computes a content hash from bytes
func ComputeHash(data []byte) ContentHash {
	return sha256.Sum256(data)
}

// HashJSON hashes the JSON encoding of v. Struct fields encode in
// declaration order and map keys sorted, so equal values hash equally.
func HashJSON(v interface{}) (ContentHash, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return ContentHash{}, err
	}
	return ComputeHash(data), nil
}

// Hex returns the hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters, for display
func (h ContentHash) Short() string {
	return h.Hex()[:12]
}

// String implements Stringer
func (h ContentHash) String() string {
	return h.Short() + "..."
}

// SortedKeys returns the keys of a string-keyed map in ascending order
func SortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
