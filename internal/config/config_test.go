package config

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.Graph.Backend != "neo4j" {
		t.Errorf("expected default backend neo4j, got %q", cfg.Graph.Backend)
	}
	if cfg.Neo4j.URI != "bolt://localhost:7687" {
		t.Errorf("unexpected default neo4j uri %q", cfg.Neo4j.URI)
	}
	if cfg.Queue.Async.Threshold != 2<<20 {
		t.Errorf("unexpected async threshold %d", cfg.Queue.Async.Threshold)
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("SYNAPSE_PORT", "9001")
	t.Setenv("SYNAPSE_GRAPH_BACKEND", "memory")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 9001 {
		t.Errorf("expected env port 9001, got %d", cfg.Port)
	}
	if cfg.Graph.Backend != "memory" {
		t.Errorf("expected env backend memory, got %q", cfg.Graph.Backend)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SYNAPSE_PORT", "9001")

	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Int("port", 8080, "")
	if err := f.Parse([]string{"--port", "7777"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 7777 {
		t.Errorf("expected flag port 7777, got %d", cfg.Port)
	}
}
