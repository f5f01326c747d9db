package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/tree/layout"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kintree.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[layout]
chart = "fan"
sweep_degrees = 270.0

[cache]
backend = "none"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Layout.Chart != "fan" || cfg.Layout.SweepDegrees != 270 {
		t.Errorf("overrides lost: %+v", cfg.Layout)
	}
	if cfg.Layout.MinGap != layout.DefaultMinGap {
		t.Errorf("min_gap = %v, want default %v", cfg.Layout.MinGap, layout.DefaultMinGap)
	}
	if cfg.Page.Size != "a4" {
		t.Errorf("page size = %q, want default a4", cfg.Page.Size)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("cache backend = %q, want none", cfg.Cache.Backend)
	}
}

func TestLoadParsesDurations(t *testing.T) {
	path := writeConfig(t, `
[cache]
ttl = "90m"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Cache.TTL.Duration(); got != 90*time.Minute {
		t.Errorf("ttl = %v, want 90m", got)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad chart", "[layout]\nchart = \"tower\"\n"},
		{"bad tie break", "[layout]\ntie_break = \"random\"\n"},
		{"bad sweep", "[layout]\nsweep_degrees = 400.0\n"},
		{"bad page size", "[page]\nsize = \"b7\"\n"},
		{"bad policy", "[page]\npolicy = \"crop\"\n"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n"},
		{"bad toml", "[layout\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLayoutOptionsConversion(t *testing.T) {
	cfg := Default()
	cfg.Layout.Chart = "compact"
	cfg.Layout.SpacingScale = 0.5

	opts := cfg.LayoutOptions()
	if opts.Chart != layout.ChartCompact || opts.SpacingScale != 0.5 {
		t.Errorf("options = %+v", opts)
	}
}

func TestPageSpecConversion(t *testing.T) {
	cfg := Default()
	cfg.Page.Size = "letter"
	cfg.Page.Orientation = "landscape"

	spec, err := cfg.PageSpec()
	if err != nil {
		t.Fatalf("PageSpec: %v", err)
	}
	if spec.Size.Name != "letter" {
		t.Errorf("size = %s, want letter", spec.Size.Name)
	}
	if spec.PageWidth() != 792 {
		t.Errorf("landscape width = %v, want 792", spec.PageWidth())
	}
}
