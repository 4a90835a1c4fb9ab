package neo4j

import (
	"reflect"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/wikigraph/pkg/common"
)

func TestRelationshipCypher(t *testing.T) {
	for _, rt := range common.RefTypes {
		cypher := relationshipCypher(rt)
		if !strings.Contains(cypher, "CREATE (a)-[:"+rt.String()+" {distance: r.distance}]->(b)") {
			t.Fatalf("%s: relationship type not encoded in %q", rt, cypher)
		}
	}
}

func TestNodeParams(t *testing.T) {
	got := nodeParams([]int64{4, 5}, []string{"Paris", "France"})
	want := []map[string]any{
		{"id": int64(4), "title": "Paris"},
		{"id": int64(5), "title": "France"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected params: %v", got)
	}
}

func TestRelationshipParams(t *testing.T) {
	got := relationshipParams([]common.Relationship{{From: 1, To: 2, Type: common.RefRelated, Distance: 3}})
	want := []map[string]any{{"from": int64(1), "to": int64(2), "distance": int64(3)}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected params: %v", got)
	}
}

func TestNewGraphNeo4jStorage_Validation(t *testing.T) {
	if _, err := NewGraphNeo4jStorage(nil, "enwiki"); err == nil {
		t.Fatal("expected an error without client")
	}
	if _, err := NewGraphNeo4jStorage(&Client{}, "enwiki"); err == nil {
		t.Fatal("expected an error without driver")
	}
}
