// Package memo provides a content-addressed memoization cache. AI calls are
// memoized on a digest of their exact inputs so a repeated action with
// unchanged inputs does not reissue the network call.
package memo

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a bounded TTL cache keyed by input digest.
type Cache[V any] struct {
	lru *expirable.LRU[string, V]
}

// New builds a cache holding up to size entries, each expiring after ttl.
func New[V any](size int, ttl time.Duration) *Cache[V] {
	if size <= 0 {
		size = 128
	}
	return &Cache[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

// Key derives a stable digest from the given input parts. Part boundaries are
// length-prefixed so concatenation ambiguity cannot collide keys.
func Key(parts ...[]byte) string {
	h := sha256.New()
	var lenBuf [8]byte
	for _, part := range parts {
		n := len(part)
		for i := 0; i < 8; i++ {
			lenBuf[i] = byte(n >> (8 * i))
		}
		h.Write(lenBuf[:])
		h.Write(part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache[V]) Get(key string) (V, bool) {
	if c == nil || c.lru == nil {
		var zero V
		return zero, false
	}
	return c.lru.Get(key)
}

// Set stores a value under key.
func (c *Cache[V]) Set(key string, value V) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(key, value)
}
