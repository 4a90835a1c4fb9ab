// Package memory keeps the graph in process memory. It backs tests and
// small dumps.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/OFFIS-RIT/wikigraph/pkg/common"
)

type GraphMemoryStorage struct {
	mu    sync.RWMutex
	nodes []common.Node
	rels  []common.Relationship
}

func NewGraphMemoryStorage() *GraphMemoryStorage {
	return &GraphMemoryStorage{}
}

func (s *GraphMemoryStorage) Prepare(ctx context.Context) error {
	s.mu.Lock()
	s.nodes = nil
	s.rels = nil
	s.mu.Unlock()
	return nil
}

// CreateNodes assigns ids equal to the node's position, starting at zero.
func (s *GraphMemoryStorage) CreateNodes(ctx context.Context, titles []string) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, len(titles))
	for i, title := range titles {
		id := int64(len(s.nodes))
		s.nodes = append(s.nodes, common.Node{ID: id, Title: title})
		ids[i] = id
	}
	return ids, nil
}

func (s *GraphMemoryStorage) CreateRelationships(ctx context.Context, rels []common.Relationship) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.nodes))
	for _, rel := range rels {
		if rel.From < 0 || rel.From >= n || rel.To < 0 || rel.To >= n {
			return 0, fmt.Errorf("relationship %d -> %d references an unknown node", rel.From, rel.To)
		}
		if !rel.Type.Valid() {
			return 0, fmt.Errorf("relationship %d -> %d has invalid type %d", rel.From, rel.To, rel.Type)
		}
	}
	s.rels = append(s.rels, rels...)
	return int64(len(rels)), nil
}

func (s *GraphMemoryStorage) Close(ctx context.Context) error {
	return nil
}

// Nodes returns a copy of all nodes ordered by id.
func (s *GraphMemoryStorage) Nodes() []common.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.nodes)
}

// Relationships returns a copy of all relationships in write order.
// Concurrent flushes make the order between batches nondeterministic.
func (s *GraphMemoryStorage) Relationships() []common.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rels)
}
