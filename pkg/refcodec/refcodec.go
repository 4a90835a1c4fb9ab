// Package refcodec packs a reference into a single string so it can travel
// through the intermediate artifact as plain element text.
//
// The encoded form is
//
//	||<tag>////<distance>||<title>
//
// where <tag> is the reference type tag (l, r or h) and <distance> is a
// non-negative decimal number. Everything after the second "||" is the title,
// taken verbatim, so titles need no escaping.
package refcodec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/wikigraph/pkg/common"
)

const (
	fieldSep = "||"
	tagSep   = "////"
)

// ErrMalformed is returned when a value does not follow the encoded form.
var ErrMalformed = errors.New("malformed reference encoding")

// Encode returns the string form of ref.
func Encode(ref common.Reference) string {
	var b strings.Builder
	b.Grow(len(fieldSep)*2 + len(tagSep) + 1 + 4 + len(ref.Title))
	b.WriteString(fieldSep)
	b.WriteString(ref.Type.Tag())
	b.WriteString(tagSep)
	b.WriteString(strconv.Itoa(ref.Distance))
	b.WriteString(fieldSep)
	b.WriteString(ref.Title)
	return b.String()
}

// Decode parses a value produced by Encode.
func Decode(value string) (common.Reference, error) {
	rest, ok := strings.CutPrefix(value, fieldSep)
	if !ok {
		return common.Reference{}, malformed(value, "missing prefix")
	}

	tag, rest, ok := strings.Cut(rest, tagSep)
	if !ok {
		return common.Reference{}, malformed(value, "missing type separator")
	}
	refType, ok := common.ParseRefTag(tag)
	if !ok {
		return common.Reference{}, malformed(value, "unknown type tag")
	}

	digits, title, ok := strings.Cut(rest, fieldSep)
	if !ok {
		return common.Reference{}, malformed(value, "missing title separator")
	}
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return common.Reference{}, malformed(value, "invalid distance")
	}
	distance, err := strconv.Atoi(digits)
	if err != nil {
		return common.Reference{}, malformed(value, "invalid distance")
	}

	return common.Reference{Type: refType, Distance: distance, Title: title}, nil
}

// DecodeElement decodes value and checks that its type matches the element
// name it was stored under.
func DecodeElement(name, value string) (common.Reference, error) {
	ref, err := Decode(value)
	if err != nil {
		return common.Reference{}, err
	}
	if ref.Type.Tag() != name {
		return common.Reference{}, malformed(value, fmt.Sprintf("stored under element %q", name))
	}
	return ref, nil
}

func malformed(value, reason string) error {
	return fmt.Errorf("%w: %s: %q", ErrMalformed, reason, value)
}
