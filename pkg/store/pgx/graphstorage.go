// Package pgx stores the reference graph in PostgreSQL.
//
// Schema objects are created by the migrations in internal/db. Every row
// carries the graph id, so several graphs can share the tables.
package pgx

import (
	"context"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/OFFIS-RIT/wikigraph/internal/util"
	"github.com/OFFIS-RIT/wikigraph/pkg/common"
	"github.com/OFFIS-RIT/wikigraph/pkg/store"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgxv5.Identifier, columnNames []string, rowSrc pgxv5.CopyFromSource) (int64, error)
}

var (
	nodesTable          = pgxv5.Identifier{"wiki_nodes"}
	nodeColumns         = []string{"graph_id", "id", "title"}
	relationshipsTable  = pgxv5.Identifier{"wiki_relationships"}
	relationshipColumns = []string{"graph_id", "source_id", "target_id", "rel_type", "distance"}
)

const deleteRelationshipsSQL = `DELETE FROM wiki_relationships WHERE graph_id = $1`

const deleteNodesSQL = `DELETE FROM wiki_nodes WHERE graph_id = $1`

// GraphDBStorage implements store.GraphStorage with COPY based bulk inserts.
// Node ids are dense per graph and allocated by the storage, which is safe
// because an import holds the graph's lease for its whole duration.
type GraphDBStorage struct {
	conn    pgxIConn
	graphID string
	ids     store.IDSequence
}

// NewGraphDBStorageWithConnection creates a new GraphDBStorage writing the
// graph graphID through conn. conn is usually a *pgxpool.Pool, which makes
// concurrent relationship flushes use separate connections.
func NewGraphDBStorageWithConnection(conn pgxIConn, graphID string) (*GraphDBStorage, error) {
	if graphID == "" {
		return nil, fmt.Errorf("graph id is required")
	}
	return &GraphDBStorage{
		conn:    conn,
		graphID: graphID,
	}, nil
}

// Prepare removes the previous import of the graph.
func (s *GraphDBStorage) Prepare(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, deleteRelationshipsSQL, s.graphID); err != nil {
		return fmt.Errorf("failed to clear relationships of graph %s: %w", s.graphID, err)
	}
	if _, err := s.conn.Exec(ctx, deleteNodesSQL, s.graphID); err != nil {
		return fmt.Errorf("failed to clear nodes of graph %s: %w", s.graphID, err)
	}
	s.ids.Reset()
	return nil
}

func (s *GraphDBStorage) CreateNodes(ctx context.Context, titles []string) ([]int64, error) {
	if len(titles) == 0 {
		return nil, nil
	}
	ids := s.ids.Next(len(titles))
	rows := make([][]any, len(titles))
	for i, title := range titles {
		rows[i] = []any{s.graphID, ids[i], util.SanitizePostgresText(title)}
	}

	n, err := s.conn.CopyFrom(ctx, nodesTable, nodeColumns, pgxv5.CopyFromRows(rows))
	if err != nil {
		return nil, fmt.Errorf("failed to copy %d nodes: %w", len(titles), err)
	}
	if n != int64(len(titles)) {
		return nil, fmt.Errorf("copied %d of %d nodes", n, len(titles))
	}
	return ids, nil
}

func (s *GraphDBStorage) CreateRelationships(ctx context.Context, rels []common.Relationship) (int64, error) {
	if len(rels) == 0 {
		return 0, nil
	}
	n, err := s.conn.CopyFrom(ctx, relationshipsTable, relationshipColumns, pgxv5.CopyFromSlice(len(rels), func(i int) ([]any, error) {
		rel := rels[i]
		if !rel.Type.Valid() {
			return nil, fmt.Errorf("relationship %d -> %d has invalid type %d", rel.From, rel.To, rel.Type)
		}
		return []any{s.graphID, rel.From, rel.To, rel.Type.String(), int32(rel.Distance)}, nil
	}))
	if err != nil {
		return 0, fmt.Errorf("failed to copy %d relationships: %w", len(rels), err)
	}
	return n, nil
}

// Close is a no-op; the connection belongs to the caller.
func (s *GraphDBStorage) Close(ctx context.Context) error {
	return nil
}
