// Package config loads application configuration from defaults, an optional
// TOML file, environment variables, and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all configuration for the application
type Config struct {
	DataPath     string  `koanf:"data"`
	SQLitePath   string  `koanf:"sqlite"`
	EnrichedPath string  `koanf:"enriched"`
	Founder      string  `koanf:"founder"`
	MinKarma     int     `koanf:"min-karma"`
	LODTable     string  `koanf:"lod-table"`
	Port         int     `koanf:"port"`
	Host         string  `koanf:"host"`
	Watch        bool    `koanf:"watch"`
	CacheDir     string  `koanf:"cache-dir"`
	RedisURL     string  `koanf:"redis-url"`
	MongoURL     string  `koanf:"mongo-url"`
	TargetRadius float64 `koanf:"target-radius"`
	Verbosity    string  `koanf:"verbosity"`
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"data":          "data/graph.json",
		"sqlite":        "",
		"enriched":      "data/enriched.json",
		"founder":       "jcs",
		"min-karma":     0,
		"lod-table":     "",
		"port":          8080,
		"host":          "127.0.0.1",
		"watch":         false,
		"cache-dir":     ".lobstergraph-cache",
		"redis-url":     "",
		"mongo-url":     "",
		"target-radius": 5000.0,
		"verbosity":     "",
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional) - lobstergraph.toml
	// We ignore errors here as the file might not exist
	_ = k.Load(file.Provider("lobstergraph.toml"), toml.Parser())

	// 3. Environment Variables
	// Prefix: LOBSTERGRAPH_ (e.g., LOBSTERGRAPH_PORT=9090)
	if err := k.Load(env.Provider("LOBSTERGRAPH_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "LOBSTERGRAPH_")), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
