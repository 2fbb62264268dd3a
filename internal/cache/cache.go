// Package cache stores verification results so unchanged transcripts are not
// verified twice.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from the rules version and the raw inputs of one
// verification run. Inputs are length-prefixed so that moving bytes between
// adjacent inputs changes the key.
func Key(version string, inputs ...[]byte) string {
	h := sha256.New()
	var n [8]byte
	for _, in := range inputs {
		binary.BigEndian.PutUint64(n[:], uint64(len(in)))
		h.Write(n[:])
		h.Write(in)
	}
	return "earningscheck:" + version + ":" + hex.EncodeToString(h.Sum(nil))
}
