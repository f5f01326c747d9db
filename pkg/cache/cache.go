// Package cache provides pluggable result caching for the layout pipeline.
//
// Three backends are included: a file cache for CLI usage, a Redis cache for
// the serve facade, and a null cache that disables caching entirely. Keys are
// built by a [Keyer] so graph and layout entries stay distinct and option
// changes never alias each other.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes per pipeline stage. Graphs change when the
// underlying store changes, layouts only when the graph or options do.
const (
	TTLGraph  = 24 * time.Hour
	TTLLayout = 7 * 24 * time.Hour
)

// Cache is the storage interface all backends implement.
// Values are opaque byte slices; serialization is the caller's concern.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a time-to-live. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GraphKeyOpts are the build options that shape a graph cache entry.
type GraphKeyOpts struct {
	AncestorDepth   int
	DescendantDepth int
	IncludeSpouses  bool
}

// LayoutKeyOpts are the layout and page options that shape a layout entry.
type LayoutKeyOpts struct {
	Chart        string
	SpacingScale float64
	TieBreak     string
	SweepDegrees float64
	RingWidth    float64
	PageSize     string
	Orientation  string
	FitPolicy    string
}

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// GraphKey generates a key for a built graph.
	GraphKey(rootID string, opts GraphKeyOpts) string

	// LayoutKey generates a key for computed geometry. graphHash is the
	// hash of the serialized graph the layout was computed from.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer is the standard key builder: prefix plus a SHA-256 hash of
// the identifying components.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for a built graph.
func (k *DefaultKeyer) GraphKey(rootID string, opts GraphKeyOpts) string {
	return hashKey("graph", rootID, opts)
}

// LayoutKey generates a key for computed geometry.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}
