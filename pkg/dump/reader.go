// Package dump reads encyclopedia XML dumps and the intermediate reference
// artifact as a flat stream of element events.
package dump

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Element is emitted when a tracked element closes. Value holds the
// character data directly inside the element; text of nested tracked
// elements belongs to those elements.
type Element struct {
	Name  string
	Value string
}

// Reader turns an XML stream into Element events for a fixed set of element
// names. Untracked elements are traversed but never reported, and their text
// is attributed to the nearest enclosing tracked element.
type Reader struct {
	dec   *xml.Decoder
	names map[string]struct{}
	open  []*strings.Builder
	err   error
}

func NewReader(r io.Reader, names ...string) *Reader {
	tracked := make(map[string]struct{}, len(names))
	for _, n := range names {
		tracked[n] = struct{}{}
	}
	dec := xml.NewDecoder(r)
	return &Reader{dec: dec, names: tracked}
}

// Next returns the next closing tracked element. It returns io.EOF once the
// input is exhausted; any other error is final.
func (r *Reader) Next() (Element, error) {
	if r.err != nil {
		return Element{}, r.err
	}
	for {
		tok, err := r.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(r.open) > 0 {
					err = fmt.Errorf("unexpected end of dump inside %d open elements", len(r.open))
				}
			} else {
				err = fmt.Errorf("failed to read dump: %w", err)
			}
			r.err = err
			return Element{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if _, ok := r.names[t.Name.Local]; ok {
				r.open = append(r.open, &strings.Builder{})
			}
		case xml.CharData:
			if n := len(r.open); n > 0 {
				r.open[n-1].Write(t)
			}
		case xml.EndElement:
			if _, ok := r.names[t.Name.Local]; !ok {
				continue
			}
			n := len(r.open)
			value := r.open[n-1].String()
			r.open = r.open[:n-1]
			return Element{Name: t.Name.Local, Value: value}, nil
		}
	}
}
