package sharding

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTopology(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shards.yaml")
	content := `
buckets: 4
shards:
  - id: shard-0
    database_url: postgres://localhost:5432/s0
  - id: shard-1
    database_url: postgres://localhost:5433/s1
assignments:
  "0": shard-0
  "1": shard-1
  "2": shard-0
  "3": shard-1
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write topology file: %v", err)
	}

	topology, err := LoadTopology(path)
	if err != nil {
		t.Fatalf("LoadTopology failed: %v", err)
	}

	if topology.Buckets != 4 {
		t.Errorf("expected 4 buckets, got %d", topology.Buckets)
	}
	if len(topology.ShardIDs()) != 2 {
		t.Errorf("expected 2 shards, got %d", len(topology.ShardIDs()))
	}
	if shardID, ok := topology.shardFor(1); !ok || shardID != "shard-1" {
		t.Errorf("expected bucket 1 on shard-1, got %s (%v)", shardID, ok)
	}
}

func TestLoadTopologyMissingFile(t *testing.T) {
	if _, err := LoadTopology(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBuildTopologyValidation(t *testing.T) {
	shards := []Shard{{ID: "shard-0", DatabaseURL: "postgres://localhost/s0"}}

	tests := []struct {
		name string
		file topologyFile
	}{
		{
			name: "zero buckets",
			file: topologyFile{Buckets: 0, Shards: shards},
		},
		{
			name: "no shards",
			file: topologyFile{Buckets: 4},
		},
		{
			name: "shard without id",
			file: topologyFile{Buckets: 4, Shards: []Shard{{DatabaseURL: "postgres://localhost/s0"}}},
		},
		{
			name: "shard without database url",
			file: topologyFile{Buckets: 4, Shards: []Shard{{ID: "shard-0"}}},
		},
		{
			name: "duplicate shard id",
			file: topologyFile{Buckets: 4, Shards: []Shard{shards[0], shards[0]}},
		},
		{
			name: "bucket out of range",
			file: topologyFile{Buckets: 4, Shards: shards, Assignments: map[string]string{"4": "shard-0"}},
		},
		{
			name: "negative bucket",
			file: topologyFile{Buckets: 4, Shards: shards, Assignments: map[string]string{"-1": "shard-0"}},
		},
		{
			name: "unknown shard assignment",
			file: topologyFile{Buckets: 4, Shards: shards, Assignments: map[string]string{"0": "shard-9"}},
		},
		{
			name: "non-numeric bucket",
			file: topologyFile{Buckets: 4, Shards: shards, Assignments: map[string]string{"x": "shard-0"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := buildTopology(tt.file); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
