// Package markup extracts typed references from raw article markup.
//
// Scanning and classification are split: Scan turns text into a lazy
// sequence of lexical matches, Classify folds those matches into a
// deduplicated reference set. Classify carries its state explicitly, so it
// can be tested without any dump or stream machinery.
package markup

import (
	"iter"
	"regexp"
)

// MatchKind identifies which alternative of the reference grammar matched.
type MatchKind uint8

const (
	MatchRedirect MatchKind = iota + 1
	MatchLink
	MatchHeader
	MatchRelated
)

func (k MatchKind) String() string {
	switch k {
	case MatchRedirect:
		return "redirect"
	case MatchLink:
		return "link"
	case MatchHeader:
		return "header"
	case MatchRelated:
		return "related"
	}
	return "unknown"
}

// Match is a single lexical match of the reference grammar. Content holds the
// captured inner text; it is empty for redirect markers. Start and End are
// byte offsets of the whole match in the scanned text.
type Match struct {
	Kind    MatchKind
	Content string
	Start   int
	End     int
}

// The four alternatives are tried together at every position. Alternatives
// listed first win when several match at the same offset.
var referencePattern = regexp.MustCompile(
	`(#REDIRECT)` +
		`|\[\[(.+?)\]\]` +
		`|={2,5}(.+?)={2,5}` +
		`|\{\{(.+?)\}\}`,
)

// submatch group index per kind, offsets into FindStringSubmatchIndex output
var groupKinds = [...]MatchKind{1: MatchRedirect, 2: MatchLink, 3: MatchHeader, 4: MatchRelated}

// Scan returns the matches of the reference grammar in text, in document
// order. The sequence is lazy and can be ranged over again to restart. An
// empty text yields no matches.
func Scan(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		pos := 0
		for pos < len(text) {
			loc := referencePattern.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				return
			}
			m, ok := toMatch(text, pos, loc)
			if !ok {
				return
			}
			if !yield(m) {
				return
			}
			pos = m.End
		}
	}
}

// ScanAll collects every match of Scan into a slice.
func ScanAll(text string) []Match {
	var out []Match
	for m := range Scan(text) {
		out = append(out, m)
	}
	return out
}

func toMatch(text string, offset int, loc []int) (Match, bool) {
	for group := 1; group < len(groupKinds); group++ {
		start, end := loc[2*group], loc[2*group+1]
		if start < 0 {
			continue
		}
		m := Match{
			Kind:  groupKinds[group],
			Start: offset + loc[0],
			End:   offset + loc[1],
		}
		if m.Kind != MatchRedirect {
			m.Content = text[offset+start : offset+end]
		}
		return m, true
	}
	return Match{}, false
}
