package cli

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lobstergraph/lobstergraph/internal/config"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	want := []string{"build", "serve", "export", "stats", "browse", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.SetLogLevel(log.DebugLevel)
	if got := c.Logger.GetLevel(); got != log.DebugLevel {
		t.Errorf("level = %v, want debug", got)
	}
}

func TestCacheDirPrefersConfig(t *testing.T) {
	dir, err := cacheDir(&config.Config{CacheDir: "/tmp/lg-cache"})
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/lg-cache" {
		t.Errorf("cacheDir = %q, want /tmp/lg-cache", dir)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := cacheDir(&config.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", appName); dir != want {
		t.Errorf("cacheDir = %q, want %q", dir, want)
	}
}

func TestPipelineOptionsFromConfig(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)

	opts, err := c.pipelineOptions(&config.Config{
		DataPath:     "data/graph.json",
		Founder:      "jcs",
		MinKarma:     5,
		TargetRadius: 1234,
	}, true)
	if err != nil {
		t.Fatal(err)
	}
	if opts.DataPath != "data/graph.json" {
		t.Errorf("DataPath = %q", opts.DataPath)
	}
	if opts.MinKarma != 5 {
		t.Errorf("MinKarma = %d, want 5", opts.MinKarma)
	}
	if !opts.Refresh {
		t.Error("Refresh not set")
	}
	if opts.Layout.TargetRadius != 1234 {
		t.Errorf("TargetRadius = %v, want 1234", opts.Layout.TargetRadius)
	}
}

func TestPipelineOptionsSQLiteWins(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)

	opts, err := c.pipelineOptions(&config.Config{
		DataPath:   "data/graph.json",
		SQLitePath: "users.db",
		Founder:    "jcs",
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	if opts.DataPath != "" {
		t.Errorf("DataPath = %q, want empty when sqlite is set", opts.DataPath)
	}
	if opts.SQLitePath != "users.db" {
		t.Errorf("SQLitePath = %q", opts.SQLitePath)
	}
}
