package markup

import (
	"iter"
	"strings"

	"github.com/OFFIS-RIT/wikigraph/pkg/common"
)

// ScanState is the per-article state carried across matches.
//
// Redirect becomes true at the first redirect marker and stays true for the
// rest of the article. Headers counts the section headers seen so far and is
// stamped as the distance of every following reference.
type ScanState struct {
	Redirect bool
	Headers  int
}

// Classify folds the matches of one article into its reference set.
//
// References are deduplicated on (type, distance, title) and returned in the
// order of their first occurrence. References pointing back to title are
// dropped. The final scan state is returned alongside.
func Classify(title string, matches iter.Seq[Match], state ScanState) ([]common.Reference, ScanState) {
	set := newReferenceSet()

	for m := range matches {
		switch m.Kind {
		case MatchRedirect:
			state.Redirect = true
		case MatchHeader:
			state.Headers++
		case MatchLink:
			target, ok := linkTarget(m.Content)
			if !ok {
				continue
			}
			refType := common.RefLink
			if state.Redirect {
				refType = common.RefRedirect
			}
			set.add(common.Reference{Type: refType, Distance: state.Headers, Title: target})
		case MatchRelated:
			for _, target := range relatedTargets(m.Content) {
				set.add(common.Reference{Type: common.RefRelated, Distance: state.Headers, Title: target})
			}
		}
	}

	set.remove(title)
	return set.refs(), state
}

// Extract scans and classifies a whole article starting from the zero state.
func Extract(article common.Article) []common.Reference {
	refs, _ := Classify(article.Title, Scan(article.Text), ScanState{})
	return refs
}

// linkTarget resolves the canonical title of a bracketed link. Namespaced
// targets (anything containing ':') are rejected. A piped link resolves to
// the part after its last '|'. An empty target is kept and later counts as a
// bad link.
func linkTarget(content string) (string, bool) {
	if strings.Contains(content, ":") {
		return "", false
	}
	if i := strings.LastIndexByte(content, '|'); i >= 0 {
		content = content[i+1:]
	}
	return content, true
}

// relatedTargets returns the titles listed in a related-articles block. The
// block is only recognised when its first field names the "Main" or
// "Related articles" template. Trailing empty fields are dropped, interior
// ones are returned as empty titles.
func relatedTargets(content string) []string {
	fields := strings.Split(content, "|")
	if !isRelatedTemplate(fields[0]) {
		return nil
	}
	fields = fields[1:]
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

func isRelatedTemplate(name string) bool {
	return strings.Contains(name, "Main") || strings.Contains(name, "Related articles")
}

type referenceSet struct {
	seen  map[common.Reference]struct{}
	order []common.Reference
}

func newReferenceSet() *referenceSet {
	return &referenceSet{seen: make(map[common.Reference]struct{})}
}

func (s *referenceSet) add(ref common.Reference) {
	if _, ok := s.seen[ref]; ok {
		return
	}
	s.seen[ref] = struct{}{}
	s.order = append(s.order, ref)
}

func (s *referenceSet) remove(title string) {
	kept := s.order[:0]
	for _, ref := range s.order {
		if ref.Title == title {
			delete(s.seen, ref)
			continue
		}
		kept = append(kept, ref)
	}
	s.order = kept
}

func (s *referenceSet) refs() []common.Reference {
	if len(s.order) == 0 {
		return nil
	}
	return s.order
}
