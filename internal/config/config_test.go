package config

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Founder != "jcs" {
		t.Errorf("Founder = %q, want jcs", cfg.Founder)
	}
	if cfg.DataPath != "data/graph.json" {
		t.Errorf("DataPath = %q, want data/graph.json", cfg.DataPath)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LOBSTERGRAPH_PORT", "9999")
	t.Setenv("LOBSTERGRAPH_MIN_KARMA", "25")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9999 {
		t.Errorf("Port = %d, want env override 9999", cfg.Port)
	}
	if cfg.MinKarma != 25 {
		t.Errorf("MinKarma = %d, want env override 25", cfg.MinKarma)
	}
}

func TestLoadFlagsBeatEnv(t *testing.T) {
	t.Setenv("LOBSTERGRAPH_PORT", "9999")

	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Int("port", 8080, "")
	if err := f.Parse([]string{"--port", "7000"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("Port = %d, want flag override 7000", cfg.Port)
	}
}
