// Package cache stores rendered artifacts keyed by content hash.
//
// The pipeline renders the same chart, script and format combination to the
// same bytes, so a key derived from their hashes identifies an artifact
// completely. Two backends are provided: [FileCache] for the CLI and
// [NullCache] when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Expiry of cached entries.
const (
	TTLArtifact = 7 * 24 * time.Hour
	TTLReplay   = 24 * time.Hour
)

// ArtifactKeyOpts are the render settings that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	ScriptHash string  `json:"script_hash,omitempty"`
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Background string  `json:"background,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey identifies one rendered output of a chart.
	ArtifactKey(chartHash string, opts ArtifactKeyOpts) string
	// ReplayKey identifies the notification log of a script replayed on a chart.
	ReplayKey(chartHash, scriptHash string) string
}

// DefaultKeyer hashes every option into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(chartHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", chartHash, opts)
}

// ReplayKey implements Keyer.
func (DefaultKeyer) ReplayKey(chartHash, scriptHash string) string {
	return hashKey("replay", chartHash, scriptHash)
}
