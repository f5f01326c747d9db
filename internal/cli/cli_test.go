package cli

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	want := []string{"build", "layout", "chart", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.SetLogLevel(log.DebugLevel)
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("dir = %s", dir)
	}
}

func TestNewCacheDisabled(t *testing.T) {
	c, err := newCache(true)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	if c == nil {
		t.Fatal("newCache returned nil cache")
	}
}
