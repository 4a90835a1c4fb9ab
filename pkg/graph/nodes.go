package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/OFFIS-RIT/wikigraph/internal/util"
	"github.com/OFFIS-RIT/wikigraph/pkg/common"
	"github.com/OFFIS-RIT/wikigraph/pkg/dump"
	"github.com/OFFIS-RIT/wikigraph/pkg/index"
	"github.com/OFFIS-RIT/wikigraph/pkg/store"
)

// CreateNodes creates one node per artifact title, in batches, and
// registers every created id in idx. It does not freeze idx.
func (g *GraphClient) CreateNodes(
	ctx context.Context,
	artifact io.Reader,
	storeClient store.GraphStorage,
	idx index.TitleIndex,
) (common.ImportStats, error) {
	var stats common.ImportStats
	reader := dump.NewReader(artifact, dump.ArtifactTitle)
	progress := util.NewProgressCounter("[Graph] Creating nodes", 30*time.Second)

	titles := make([]string, 0, g.batchSize)
	flush := func() error {
		if len(titles) == 0 {
			return nil
		}
		ids, err := storeClient.CreateNodes(ctx, titles)
		if err != nil {
			return fmt.Errorf("failed to create nodes: %w", err)
		}
		if len(ids) != len(titles) {
			return fmt.Errorf("storage returned %d ids for %d nodes", len(ids), len(titles))
		}
		for i, title := range titles {
			if err := idx.Register(title, ids[i]); err != nil {
				return fmt.Errorf("failed to register %q: %w", title, err)
			}
		}
		stats.Nodes += int64(len(titles))
		nodesCreated.Add(float64(len(titles)))
		progress.Add(int64(len(titles)))
		titles = titles[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		el, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("failed to read artifact: %w", err)
		}
		titles = append(titles, el.Value)
		if len(titles) >= g.batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}
	progress.Done()
	return stats, nil
}
