// Package store defines the storage engine contract the graph pipeline
// writes nodes and relationships through.
package store

import (
	"context"
	"sync/atomic"

	"github.com/OFFIS-RIT/wikigraph/pkg/common"
)

// GraphStorage defines the interface for persisting the reference graph.
// Engines receive whole batches so they can use their bulk write paths.
//
// CreateNodes returns one id per title, in order. CreateRelationships
// returns the number of relationships actually written. Both may be called
// concurrently once Prepare has returned.
type GraphStorage interface {
	// Prepare creates missing schema objects and removes any graph
	// previously imported under the same graph id.
	Prepare(ctx context.Context) error
	CreateNodes(ctx context.Context, titles []string) ([]int64, error)
	CreateRelationships(ctx context.Context, rels []common.Relationship) (int64, error)
	Close(ctx context.Context) error
}

// IDSequence hands out consecutive node ids starting at zero. Engines that
// have no server side sequence allocate ids with it.
type IDSequence struct {
	next atomic.Int64
}

// Next reserves n ids and returns them in ascending order.
func (s *IDSequence) Next(n int) []int64 {
	if n <= 0 {
		return nil
	}
	last := s.next.Add(int64(n))
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = last - int64(n) + int64(i)
	}
	return ids
}

// Reset restarts the sequence at zero.
func (s *IDSequence) Reset() {
	s.next.Store(0)
}
