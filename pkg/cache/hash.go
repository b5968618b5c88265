package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// SearchKey returns the cache key for one provider search. Queries are
// compared case-insensitively with surrounding whitespace removed.
func SearchKey(provider, query string, perPage int) string {
	q := strings.ToLower(strings.Join(strings.Fields(query), " "))
	return hashKey("search:"+provider, q, perPage)
}
