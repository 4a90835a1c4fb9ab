// Package neo4j stores the reference graph as :Page nodes in Neo4j, with one
// relationship type per reference type.
package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/OFFIS-RIT/wikigraph/pkg/common"
	"github.com/OFFIS-RIT/wikigraph/pkg/logger"
	"github.com/OFFIS-RIT/wikigraph/pkg/store"
)

const createIndexCypher = `CREATE INDEX page_graph_id IF NOT EXISTS FOR (p:Page) ON (p.graph, p.id)`

const deleteGraphCypher = `
MATCH (p:Page {graph: $graph})
CALL { WITH p DETACH DELETE p } IN TRANSACTIONS OF 10000 ROWS
`

const createNodesCypher = `
UNWIND $nodes AS n
CREATE (:Page {graph: $graph, id: n.id, title: n.title})
`

// GraphNeo4jStorage implements store.GraphStorage on top of a Neo4j client.
// Node ids are allocated client side and stored as the id property.
type GraphNeo4jStorage struct {
	client  *Client
	graphID string
	ids     store.IDSequence
}

func NewGraphNeo4jStorage(client *Client, graphID string) (*GraphNeo4jStorage, error) {
	if client == nil || client.Driver == nil {
		return nil, fmt.Errorf("neo4j client is required")
	}
	if graphID == "" {
		return nil, fmt.Errorf("graph id is required")
	}
	return &GraphNeo4jStorage{client: client, graphID: graphID}, nil
}

// Prepare creates the lookup index and deletes the graph's previous import.
func (s *GraphNeo4jStorage) Prepare(ctx context.Context) error {
	session := s.client.session(ctx)
	defer session.Close(ctx)

	if err := runAutoCommit(ctx, session, createIndexCypher, nil); err != nil {
		logger.Warn("[Neo4j] Index creation failed, continuing", "err", err)
	}
	if err := runAutoCommit(ctx, session, deleteGraphCypher, map[string]any{"graph": s.graphID}); err != nil {
		return fmt.Errorf("failed to delete graph %s: %w", s.graphID, err)
	}
	s.ids.Reset()
	return nil
}

func (s *GraphNeo4jStorage) CreateNodes(ctx context.Context, titles []string) ([]int64, error) {
	if len(titles) == 0 {
		return nil, nil
	}
	ids := s.ids.Next(len(titles))

	session := s.client.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, createNodesCypher, map[string]any{
			"graph": s.graphID,
			"nodes": nodeParams(ids, titles),
		})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %d nodes: %w", len(titles), err)
	}
	return ids, nil
}

// CreateRelationships writes one statement per relationship type in a single
// transaction and returns the number of relationships created.
func (s *GraphNeo4jStorage) CreateRelationships(ctx context.Context, rels []common.Relationship) (int64, error) {
	if len(rels) == 0 {
		return 0, nil
	}
	groups := store.GroupByType(rels)

	session := s.client.session(ctx)
	defer session.Close(ctx)

	created, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		var total int64
		for _, t := range common.RefTypes {
			group := groups[t]
			if len(group) == 0 {
				continue
			}
			res, err := tx.Run(ctx, relationshipCypher(t), map[string]any{
				"graph": s.graphID,
				"rels":  relationshipParams(group),
			})
			if err != nil {
				return nil, err
			}
			record, err := res.Single(ctx)
			if err != nil {
				return nil, err
			}
			n, _ := record.Get("created")
			count, ok := n.(int64)
			if !ok {
				return nil, fmt.Errorf("unexpected count %v for %s relationships", n, t)
			}
			total += count
		}
		return total, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create %d relationships: %w", len(rels), err)
	}
	return created.(int64), nil
}

// Close releases the client's driver.
func (s *GraphNeo4jStorage) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func runAutoCommit(ctx context.Context, session neo4j.SessionWithContext, cypher string, params map[string]any) error {
	res, err := session.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func relationshipCypher(t common.RefType) string {
	return `
UNWIND $rels AS r
MATCH (a:Page {graph: $graph, id: r.from})
MATCH (b:Page {graph: $graph, id: r.to})
CREATE (a)-[:` + t.String() + ` {distance: r.distance}]->(b)
RETURN count(*) AS created
`
}

func nodeParams(ids []int64, titles []string) []map[string]any {
	out := make([]map[string]any, len(titles))
	for i, title := range titles {
		out[i] = map[string]any{"id": ids[i], "title": title}
	}
	return out
}

func relationshipParams(rels []common.Relationship) []map[string]any {
	out := make([]map[string]any, len(rels))
	for i, rel := range rels {
		out[i] = map[string]any{
			"from":     rel.From,
			"to":       rel.To,
			"distance": int64(rel.Distance),
		}
	}
	return out
}
