package graph

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/OFFIS-RIT/wikigraph/pkg/common"
	"github.com/OFFIS-RIT/wikigraph/pkg/dump"
	"github.com/OFFIS-RIT/wikigraph/pkg/index"
	"github.com/OFFIS-RIT/wikigraph/pkg/logger"
	"github.com/OFFIS-RIT/wikigraph/pkg/store"
)

const artifactPattern = "wikigraph-*.xml.gz"

// ProcessDumpParams defines the input of ProcessDump.
//
// Dump is the decompressed XML dump. TempDir holds the intermediate
// artifact and defaults to the system temp directory.
type ProcessDumpParams struct {
	Dump    io.Reader
	Storage store.GraphStorage
	Index   index.TitleIndex
	TempDir string
}

// ProcessDump imports a whole dump: it extracts references into a temporary
// artifact, creates every node, freezes the title index and then creates
// the relationships. The returned stats cover all three phases.
func (g *GraphClient) ProcessDump(ctx context.Context, params ProcessDumpParams) (common.ImportStats, error) {
	var total common.ImportStats

	if err := params.Storage.Prepare(ctx); err != nil {
		return total, fmt.Errorf("failed to prepare storage: %w", err)
	}

	artifact, err := os.CreateTemp(params.TempDir, artifactPattern)
	if err != nil {
		return total, fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer func() {
		artifact.Close()
		if err := os.Remove(artifact.Name()); err != nil {
			logger.Warn("[Graph] Failed to remove artifact", "path", artifact.Name(), "err", err)
		}
	}()

	logger.Info("[Graph] Extracting references", "artifact", artifact.Name())
	stats, err := g.extractTo(ctx, params.Dump, artifact)
	total = total.Add(stats)
	if err != nil {
		return total, err
	}
	logger.Info("[Graph] Extraction completed", "pages", stats.Pages, "excluded", stats.Excluded)

	stats, err = g.Build(ctx, artifact, artifact.Name(), params.Storage, params.Index)
	total = total.Add(stats)
	if err != nil {
		return total, err
	}

	logger.Info("[Graph] Import completed",
		"pages", total.Pages,
		"nodes", total.Nodes,
		"links", total.Links,
		"bad_links", total.BadLinks,
	)
	return total, nil
}

// Build creates the nodes and relationships of an existing artifact. name
// selects the decompressor. The caller prepares the storage.
func (g *GraphClient) Build(
	ctx context.Context,
	artifact io.ReadSeeker,
	name string,
	storeClient store.GraphStorage,
	idx index.TitleIndex,
) (common.ImportStats, error) {
	var total common.ImportStats

	stats, err := g.readArtifact(artifact, name, func(r io.Reader) (common.ImportStats, error) {
		return g.CreateNodes(ctx, r, storeClient, idx)
	})
	total = total.Add(stats)
	if err != nil {
		return total, err
	}
	if err := idx.Freeze(); err != nil {
		return total, fmt.Errorf("failed to freeze title index: %w", err)
	}
	logger.Info("[Graph] Nodes created", "nodes", stats.Nodes, "titles", idx.Len())

	stats, err = g.readArtifact(artifact, name, func(r io.Reader) (common.ImportStats, error) {
		return g.CreateRelationships(ctx, r, storeClient, idx)
	})
	return total.Add(stats), err
}

func (g *GraphClient) extractTo(ctx context.Context, in io.Reader, artifact *os.File) (common.ImportStats, error) {
	w, err := dump.CreateCompressed(artifact, artifact.Name())
	if err != nil {
		return common.ImportStats{}, err
	}
	stats, err := g.Extract(ctx, in, w)
	if closeErr := w.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to finish artifact: %w", closeErr)
	}
	return stats, err
}

func (g *GraphClient) readArtifact(artifact io.ReadSeeker, name string, fn func(io.Reader) (common.ImportStats, error)) (common.ImportStats, error) {
	if _, err := artifact.Seek(0, io.SeekStart); err != nil {
		return common.ImportStats{}, fmt.Errorf("failed to rewind artifact: %w", err)
	}
	r, err := dump.OpenCompressed(artifact, name)
	if err != nil {
		return common.ImportStats{}, err
	}
	defer r.Close()
	return fn(r)
}
