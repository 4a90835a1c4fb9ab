package common

import "fmt"

// RefType classifies a reference between two articles. The set is closed:
// every switch over a RefType handles RefLink, RefRedirect and RefRelated.
type RefType uint8

const (
	// RefLink is a plain bracketed link in the article body.
	RefLink RefType = iota + 1
	// RefRedirect is a bracketed link found after a redirect marker.
	RefRedirect
	// RefRelated is a title listed in a "Main" / "Related articles" block.
	RefRelated
)

// RefTypes lists every reference type in tag order.
var RefTypes = []RefType{RefLink, RefRedirect, RefRelated}

// Tag returns the short element name used for the type in the intermediate
// artifact ("l", "r" or "h").
func (t RefType) Tag() string {
	switch t {
	case RefLink:
		return "l"
	case RefRedirect:
		return "r"
	case RefRelated:
		return "h"
	}
	return ""
}

// String returns the relationship name stored in the graph.
func (t RefType) String() string {
	switch t {
	case RefLink:
		return "Link"
	case RefRedirect:
		return "Redirect"
	case RefRelated:
		return "Related"
	}
	return fmt.Sprintf("RefType(%d)", uint8(t))
}

// Valid reports whether t is one of the known reference types.
func (t RefType) Valid() bool {
	switch t {
	case RefLink, RefRedirect, RefRelated:
		return true
	}
	return false
}

// ParseRefTag maps an artifact element name back to its RefType.
func ParseRefTag(tag string) (RefType, bool) {
	switch tag {
	case "l":
		return RefLink, true
	case "r":
		return RefRedirect, true
	case "h":
		return RefRelated, true
	}
	return 0, false
}

// Article is a single page of the source dump. Text may be empty when the
// dump carries no body for the page; HasText tells the two cases apart.
type Article struct {
	Title   string
	Text    string
	HasText bool
}

// Reference is an outbound reference extracted from an article.
//
// Reference is comparable so it can be used directly as a set key: two
// references are the same only if type, distance and title all match.
type Reference struct {
	Type     RefType
	Distance int
	Title    string
}

// Node is a graph vertex created for an included article.
type Node struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Relationship is a typed, distance-annotated edge between two nodes.
type Relationship struct {
	From     int64   `json:"from"`
	To       int64   `json:"to"`
	Type     RefType `json:"type"`
	Distance int     `json:"distance"`
}

// ImportStats carries the counters of an import. Each phase returns its own
// ImportStats and the caller merges them with Add.
type ImportStats struct {
	Pages    int64 `json:"pages"`
	Excluded int64 `json:"excluded"`
	Nodes    int64 `json:"nodes"`
	Links    int64 `json:"links"`
	BadLinks int64 `json:"bad_links"`
}

// Add returns the field-wise sum of s and o.
func (s ImportStats) Add(o ImportStats) ImportStats {
	return ImportStats{
		Pages:    s.Pages + o.Pages,
		Excluded: s.Excluded + o.Excluded,
		Nodes:    s.Nodes + o.Nodes,
		Links:    s.Links + o.Links,
		BadLinks: s.BadLinks + o.BadLinks,
	}
}
