// Package cache stores derived pipeline artifacts (layout tables and
// rendered outputs) so that repeated runs over the same network skip the
// expensive Graphviz calls.
//
// # Backends
//
//   - [FileCache]: JSON files under a directory, for the CLI (~/.cache/graphmorph)
//   - [RedisCache]: shared cache for the preview server
//   - [NullCache]: disables caching
//
// # Keys
//
// A [Keyer] derives keys from a network hash and the options that influence
// the cached value. [ScopedKeyer] prefixes every key, which lets several
// deployments share one Redis instance.
//
// Cached values are never authoritative: a decode failure is treated as a
// miss and the value is recomputed.
package cache

import (
	"context"
	"time"
)

// Default TTLs for cached values.
const (
	// TTLLayout is how long a computed layout table is kept.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact is how long a rendered artifact is kept.
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key for one layout table of a network.
	LayoutKey(networkHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key for one rendered artifact of a run.
	ArtifactKey(tablesHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs that change a layout table.
type LayoutKeyOpts struct {
	Layout string `json:"layout"`
	Seed   uint64 `json:"seed"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string   `json:"format"`
	Order      []string `json:"order,omitempty"`
	Width      float64  `json:"width,omitempty"`
	Height     float64  `json:"height,omitempty"`
	FPS        int      `json:"fps,omitempty"`
	Hold       string   `json:"hold,omitempty"`
	Transition string   `json:"transition,omitempty"`
	Wrap       bool     `json:"wrap,omitempty"`
	Easing     string   `json:"easing,omitempty"`
	PanelSize  float64  `json:"panel_size,omitempty"`
	Columns    int      `json:"columns,omitempty"`
	NodeRadius float64  `json:"node_radius,omitempty"`
	Padding    float64  `json:"padding,omitempty"`
	Labels     bool     `json:"labels,omitempty"`
	Title      string   `json:"title,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<hash of network hash and options>".
func (DefaultKeyer) LayoutKey(networkHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", networkHash, opts)
}

// ArtifactKey returns "artifact:<hash of tables hash and options>".
func (DefaultKeyer) ArtifactKey(tablesHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", tablesHash, opts)
}
