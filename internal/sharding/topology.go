package sharding

import (
	"fmt"
	"strconv"

	"github.com/spf13/viper"
)

// Shard describes one physical shard and how to reach it.
type Shard struct {
	ID          string `mapstructure:"id"`
	DatabaseURL string `mapstructure:"database_url"`
}

// Topology is the static bucket-to-shard assignment table. It is loaded
// once at process start and treated as immutable for the process lifetime;
// reassignment is a restart-time operation.
type Topology struct {
	Buckets     int
	Shards      map[string]Shard
	assignments map[int]string
}

type topologyFile struct {
	Buckets     int               `mapstructure:"buckets"`
	Shards      []Shard           `mapstructure:"shards"`
	Assignments map[string]string `mapstructure:"assignments"`
}

// LoadTopology reads a shard topology from a YAML file.
func LoadTopology(path string) (*Topology, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read shard topology: %w", err)
	}

	var file topologyFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to parse shard topology: %w", err)
	}

	return buildTopology(file)
}

// NewTopology builds a topology from already-parsed parts, applying the
// same validation as LoadTopology. Useful for tests and programmatic
// wiring; services normally load YAML via LoadTopology.
func NewTopology(buckets int, shards []Shard, assignments map[int]string) (*Topology, error) {
	file := topologyFile{
		Buckets:     buckets,
		Shards:      shards,
		Assignments: make(map[string]string, len(assignments)),
	}
	for bucket, shardID := range assignments {
		file.Assignments[strconv.Itoa(bucket)] = shardID
	}
	return buildTopology(file)
}

func buildTopology(file topologyFile) (*Topology, error) {
	if file.Buckets <= 0 {
		return nil, fmt.Errorf("shard topology requires a positive bucket count, got %d", file.Buckets)
	}

	if len(file.Shards) == 0 {
		return nil, fmt.Errorf("shard topology defines no shards")
	}

	shards := make(map[string]Shard, len(file.Shards))
	for _, s := range file.Shards {
		if s.ID == "" {
			return nil, fmt.Errorf("shard entry without an id")
		}
		if s.DatabaseURL == "" {
			return nil, fmt.Errorf("shard %s has no database_url", s.ID)
		}
		if _, exists := shards[s.ID]; exists {
			return nil, fmt.Errorf("duplicate shard id %s", s.ID)
		}
		shards[s.ID] = s
	}

	assignments := make(map[int]string, len(file.Assignments))
	for bucketStr, shardID := range file.Assignments {
		bucket, err := strconv.Atoi(bucketStr)
		if err != nil {
			return nil, fmt.Errorf("invalid bucket index %q: %w", bucketStr, err)
		}
		if bucket < 0 || bucket >= file.Buckets {
			return nil, fmt.Errorf("bucket %d out of range [0, %d)", bucket, file.Buckets)
		}
		if _, ok := shards[shardID]; !ok {
			return nil, fmt.Errorf("bucket %d assigned to unknown shard %s", bucket, shardID)
		}
		assignments[bucket] = shardID
	}

	return &Topology{
		Buckets:     file.Buckets,
		Shards:      shards,
		assignments: assignments,
	}, nil
}

// ShardIDs returns the ids of all shards in the topology, in no particular
// order.
func (t *Topology) ShardIDs() []string {
	ids := make([]string, 0, len(t.Shards))
	for id := range t.Shards {
		ids = append(ids, id)
	}
	return ids
}

// shardFor returns the shard id owning the given bucket, if assigned.
func (t *Topology) shardFor(bucket int) (string, bool) {
	id, ok := t.assignments[bucket]
	return id, ok
}
