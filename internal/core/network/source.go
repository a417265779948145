package network

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agenthands/idresolve/internal/driver"
)

// Source loads the part of the co-occurrence graph around some identifiers.
type Source interface {
	Load(ctx context.Context, ids []string) (*Graph, error)
}

// Recorder stores that a set of identifiers appeared together.
type Recorder interface {
	Record(ctx context.Context, ids []string) error
}

// Pairs returns every unordered pair of distinct ids, in input order.
func Pairs(ids []string) []Edge {
	var out []Edge
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[i] != ids[j] {
				out = append(out, Edge{Source: ids[i], Target: ids[j], Weight: 1})
			}
		}
	}
	return out
}

// StaticSource keeps the graph in memory.
type StaticSource struct {
	mu    sync.RWMutex
	edges []Edge
}

func NewStaticSource(edges []Edge) *StaticSource {
	return &StaticSource{edges: append([]Edge(nil), edges...)}
}

// Load returns the whole in-memory graph; ids are not used to filter it.
func (s *StaticSource) Load(ctx context.Context, ids []string) (*Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NewGraph(s.edges), nil
}

func (s *StaticSource) Record(ctx context.Context, ids []string) error {
	pairs := Pairs(ids)
	s.mu.Lock()
	s.edges = append(s.edges, pairs...)
	s.mu.Unlock()
	return nil
}

// MemgraphSource reads and writes the graph through a Cypher driver.
type MemgraphSource struct {
	Driver driver.GraphDriver
	Limit  int
	Now    func() time.Time
}

func NewMemgraphSource(d driver.GraphDriver) *MemgraphSource {
	return &MemgraphSource{Driver: d, Limit: 5000, Now: time.Now}
}

func (s *MemgraphSource) Load(ctx context.Context, ids []string) (*Graph, error) {
	if len(ids) == 0 {
		return NewGraph(nil), nil
	}
	res, err := s.Driver.ExecuteQuery(ctx, driver.NeighborhoodQuery, map[string]interface{}{
		"ids":   ids,
		"limit": s.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("load co-occurrence graph: %w", err)
	}
	edges := make([]Edge, 0, len(res.Records))
	for _, rec := range res.Records {
		source, _ := rec.Get("source")
		target, _ := rec.Get("target")
		src, ok1 := source.(string)
		dst, ok2 := target.(string)
		if !ok1 || !ok2 {
			continue
		}
		edges = append(edges, Edge{Source: src, Target: dst, Weight: asFloat(rec.Values, rec.Keys, "weight")})
	}
	return NewGraph(edges), nil
}

func (s *MemgraphSource) Record(ctx context.Context, ids []string) error {
	pairs := Pairs(ids)
	if len(pairs) == 0 {
		return nil
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	seenAt := now().UTC().Format(time.RFC3339)
	params := make([]map[string]interface{}, 0, len(pairs))
	for _, p := range pairs {
		params = append(params, map[string]interface{}{
			"source":  p.Source,
			"target":  p.Target,
			"seen_at": seenAt,
		})
	}
	if _, err := s.Driver.ExecuteQuery(ctx, driver.RecordCoOccurrenceQuery, map[string]interface{}{"pairs": params}); err != nil {
		return fmt.Errorf("record co-occurrence: %w", err)
	}
	return nil
}

func asFloat(values []interface{}, keys []string, key string) float64 {
	for i, k := range keys {
		if k != key || i >= len(values) {
			continue
		}
		switch v := values[i].(type) {
		case int64:
			return float64(v)
		case float64:
			return v
		}
	}
	return 0
}
