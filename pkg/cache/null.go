package cache

import (
	"context"
	"time"
)

// NullCache never stores layout tables or artifacts, so every run recomputes
// each layout from scratch. The CLI uses it for --no-cache and runners fall
// back to it when no cache is given.
type NullCache struct{}

var _ Cache = (*NullCache)(nil)

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

// Get reports a miss for every layout or artifact key.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set drops the encoded table.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error                         { return nil }
