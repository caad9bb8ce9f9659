// Package config loads server configuration from defaults, an optional
// synapse.toml file, SYNAPSE_-prefixed environment variables, and flags.
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

// Config holds all configuration for the server and worker.
type Config struct {
	Port int `koanf:"port"`

	Database struct {
		URL string `koanf:"url"`
	} `koanf:"database"`

	Graph struct {
		Backend string `koanf:"backend"`
	} `koanf:"graph"`

	Neo4j struct {
		URI      string `koanf:"uri"`
		User     string `koanf:"user"`
		Password string `koanf:"password"`
	} `koanf:"neo4j"`

	Auth struct {
		Secret string `koanf:"secret"`
		JWKS   string `koanf:"jwks"`
		Token  struct {
			Hours int `koanf:"hours"`
		} `koanf:"token"`
	} `koanf:"auth"`

	Queue struct {
		URL   string `koanf:"url"`
		Async struct {
			Threshold int64 `koanf:"threshold"`
		} `koanf:"async"`
	} `koanf:"queue"`

	Log struct {
		File string `koanf:"file"`
	} `koanf:"log"`
}

// Load reads configuration with priority flags > env > synapse.toml >
// defaults.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"port":         8080,
		"database.url": "",

		"graph.backend":  "neo4j",
		"neo4j.uri":      "bolt://localhost:7687",
		"neo4j.user":     "neo4j",
		"neo4j.password": "",

		"auth.secret":      "",
		"auth.jwks":        "",
		"auth.token.hours": 24,

		"queue.url": "",
		// uploads above this size go through the worker
		"queue.async.threshold": int64(2 << 20),

		"log.file": "",
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// optional config file
	_ = k.Load(file.Provider("synapse.toml"), toml.Parser())

	// SYNAPSE_NEO4J_URI becomes neo4j.uri
	if err := k.Load(env.Provider("SYNAPSE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "SYNAPSE_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Flags returns the flag set the binaries register before calling Load.
func Flags(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.Int("port", 8080, "HTTP listen port")
	f.String("graph.backend", "neo4j", "graph store backend (neo4j or memory)")
	f.String("neo4j.uri", "bolt://localhost:7687", "Neo4j bolt URI")
	f.String("log.file", "", "log file path (empty for console only)")
	return f
}

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
