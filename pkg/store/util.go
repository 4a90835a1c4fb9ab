package store

import "github.com/OFFIS-RIT/wikigraph/pkg/common"

// GroupByType splits rels by relationship type, keeping their order within
// each type. Engines that encode the type in the statement use it to issue
// one statement per type.
func GroupByType(rels []common.Relationship) map[common.RefType][]common.Relationship {
	out := make(map[common.RefType][]common.Relationship, len(common.RefTypes))
	for _, rel := range rels {
		out[rel.Type] = append(out[rel.Type], rel)
	}
	return out
}
