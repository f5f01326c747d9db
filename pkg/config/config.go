// Package config loads engine configuration from TOML files.
//
// Everything the layout strategies leave configurable (fan sweep, sibling
// tie-break, spacing) has a default here, so a missing or partial config
// file is always usable. The CLI resolves the file path; this package only
// reads and validates.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/tree/layout"
	"github.com/kindredlab/kintree/pkg/tree/page"
)

// Config is the full engine configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Page   PageConfig   `toml:"page"`
	Cache  CacheConfig  `toml:"cache"`
}

// LayoutConfig holds layout strategy defaults.
type LayoutConfig struct {
	// Chart is the default chart kind.
	Chart string `toml:"chart"`

	// SpacingScale multiplies all gaps; 1.0 is the standard density.
	SpacingScale float64 `toml:"spacing_scale"`

	// GenerationHeight and MinGap in user units.
	GenerationHeight float64 `toml:"generation_height"`
	MinGap           float64 `toml:"min_gap"`

	// SweepDegrees is the fan chart arc.
	SweepDegrees float64 `toml:"sweep_degrees"`
	RingWidth    float64 `toml:"ring_width"`

	// TieBreak orders same-year siblings: "label" or "insertion".
	TieBreak string `toml:"tie_break"`
}

// PageConfig holds page fitting defaults.
type PageConfig struct {
	Size        string `toml:"size"`
	Orientation string `toml:"orientation"`
	Policy      string `toml:"policy"`
}

// CacheConfig holds cache backend settings.
type CacheConfig struct {
	// Backend is "file", "redis", or "none".
	Backend string `toml:"backend"`

	// Dir is the file backend's directory.
	Dir string `toml:"dir"`

	// RedisURL is the redis backend's connection string.
	RedisURL string `toml:"redis_url"`

	// TTL is the entry lifetime; 0 keeps entries forever.
	TTL duration `toml:"ttl"`
}

// duration wraps time.Duration for TOML strings like "24h".
type duration time.Duration

// UnmarshalText implements TOML decoding for duration strings.
func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Duration returns the wrapped time.Duration.
func (d duration) Duration() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			Chart:            string(layout.ChartStandard),
			SpacingScale:     1.0,
			GenerationHeight: layout.DefaultGenerationHeight,
			MinGap:           layout.DefaultMinGap,
			SweepDegrees:     layout.DefaultSweepDegrees,
			RingWidth:        layout.DefaultRingWidth,
			TieBreak:         string(layout.TieBreakLabel),
		},
		Page: PageConfig{
			Size:        "a4",
			Orientation: string(page.Portrait),
			Policy:      string(page.PolicyScale),
		},
		Cache: CacheConfig{
			Backend: "file",
			Dir:     defaultCacheDir(),
			TTL:     duration(24 * time.Hour),
		},
	}
}

// Load reads a TOML file over the defaults, so a partial file only
// overrides what it names. Validation failures name the offending field.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every enumerated field against its parser.
func (c Config) Validate() error {
	if _, err := layout.ParseKind(c.Layout.Chart); err != nil {
		return err
	}
	switch layout.TieBreak(c.Layout.TieBreak) {
	case layout.TieBreakLabel, layout.TieBreakInsertion:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid tie_break %q (must be label or insertion)", c.Layout.TieBreak)
	}
	if c.Layout.SpacingScale <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "spacing_scale must be positive, got %v", c.Layout.SpacingScale)
	}
	if c.Layout.SweepDegrees <= 0 || c.Layout.SweepDegrees > 360 {
		return errors.New(errors.ErrCodeInvalidInput, "sweep_degrees must be in (0, 360], got %v", c.Layout.SweepDegrees)
	}

	if _, err := page.SizeByName(c.Page.Size); err != nil {
		return err
	}
	if _, err := page.ParseOrientation(c.Page.Orientation); err != nil {
		return err
	}
	if _, err := page.ParsePolicy(c.Page.Policy); err != nil {
		return err
	}

	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid cache backend %q (must be file, redis, or none)", c.Cache.Backend)
	}
	return nil
}

// LayoutOptions converts the layout section into engine options.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{
		Chart:            layout.Kind(c.Layout.Chart),
		SpacingScale:     c.Layout.SpacingScale,
		GenerationHeight: c.Layout.GenerationHeight,
		MinGap:           c.Layout.MinGap,
		RingWidth:        c.Layout.RingWidth,
		SweepDegrees:     c.Layout.SweepDegrees,
		TieBreak:         layout.TieBreak(c.Layout.TieBreak),
	}
}

// PageSpec converts the page section into a fitter spec.
func (c Config) PageSpec() (page.Spec, error) {
	size, err := page.SizeByName(c.Page.Size)
	if err != nil {
		return page.Spec{}, err
	}
	orientation, err := page.ParseOrientation(c.Page.Orientation)
	if err != nil {
		return page.Spec{}, err
	}
	policy, err := page.ParsePolicy(c.Page.Policy)
	if err != nil {
		return page.Spec{}, err
	}
	return page.Spec{Size: size, Orientation: orientation, Policy: policy}, nil
}

// defaultCacheDir returns ~/.kintree/cache, or a relative fallback when the
// home directory cannot be resolved.
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kintree-cache"
	}
	return home + "/.kintree/cache"
}
