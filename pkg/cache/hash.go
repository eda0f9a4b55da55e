package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey derives the key of a layout table or artifact from the content hash
// of its input (a network or a set of unified tables) and the options that
// shape it. kind separates layout keys from artifact keys that share an input.
func hashKey(kind, contentHash string, opts any) string {
	data, _ := json.Marshal(struct {
		Input string `json:"input"`
		Opts  any    `json:"opts"`
	}{contentHash, opts})
	sum := sha256.Sum256(data)
	return kind + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the hex SHA-256 of data. Networks and unified tables hash
// their canonical encoding with it, and [FileCache] names entries by the hash
// of their key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
