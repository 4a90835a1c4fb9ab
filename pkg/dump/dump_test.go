package dump

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/wikigraph/pkg/common"
	"github.com/OFFIS-RIT/wikigraph/pkg/refcodec"
)

const sampleDump = `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.10/" version="0.10">
  <siteinfo><sitename>Wikipedia</sitename></siteinfo>
  <page>
    <title>Paris</title>
    <ns>0</ns>
    <revision>
      <id>1</id>
      <text xml:space="preserve">[[France]] &amp; [[Lyon|city]]</text>
    </revision>
  </page>
  <page>
    <title>Empty</title>
    <revision><text bytes="0" /></revision>
  </page>
</mediawiki>`

func readAll(t *testing.T, r *Reader) []Element {
	t.Helper()
	var out []Element
	for {
		el, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out = append(out, el)
	}
}

func TestReader_TrackedElements(t *testing.T) {
	got := readAll(t, NewReader(strings.NewReader(sampleDump), "page", "title", "text"))

	var names []string
	for _, el := range got {
		names = append(names, el.Name)
	}
	wantNames := []string{"title", "text", "page", "title", "text", "page"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Fatalf("unexpected event order: got %v, want %v", names, wantNames)
	}
	if got[0].Value != "Paris" {
		t.Fatalf("unexpected title: %q", got[0].Value)
	}
	if got[1].Value != "[[France]] & [[Lyon|city]]" {
		t.Fatalf("expected decoded text, got %q", got[1].Value)
	}
	if got[4].Value != "" {
		t.Fatalf("expected empty text for self-closing element, got %q", got[4].Value)
	}
}

func TestReader_TruncatedInput(t *testing.T) {
	r := NewReader(strings.NewReader("<mediawiki><page><title>Paris"), "page", "title")
	_, err := r.Next()
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected a read error for truncated input, got %v", err)
	}
	if _, again := r.Next(); again == nil {
		t.Fatal("expected the error to be sticky")
	}
}

func TestArtifact_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewArtifactWriter(&buf)
	refs := []common.Reference{
		{Type: common.RefRedirect, Distance: 0, Title: "France"},
		{Type: common.RefLink, Distance: 2, Title: "A <b> & c"},
		{Type: common.RefRelated, Distance: 1, Title: "Europe"},
	}
	if err := w.WritePage("Paris", refs); err != nil {
		t.Fatalf("write page: %v", err)
	}
	if err := w.WritePage("Lyon", nil); err != nil {
		t.Fatalf("write page: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := readAll(t, NewReader(&buf, ArtifactNames()...))
	if len(got) != 5 {
		t.Fatalf("expected 5 events, got %d: %v", len(got), got)
	}
	if got[0] != (Element{Name: "t", Value: "Paris"}) {
		t.Fatalf("unexpected first event: %v", got[0])
	}
	for i, ref := range refs {
		el := got[i+1]
		decoded, err := refcodec.DecodeElement(el.Name, el.Value)
		if err != nil {
			t.Fatalf("decode %v: %v", el, err)
		}
		if decoded != ref {
			t.Fatalf("unexpected reference: got %+v, want %+v", decoded, ref)
		}
	}
	if got[4] != (Element{Name: "t", Value: "Lyon"}) {
		t.Fatalf("unexpected last event: %v", got[4])
	}
}

func TestArtifact_EmptyIsWellFormed(t *testing.T) {
	var buf bytes.Buffer
	if err := NewArtifactWriter(&buf).Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := readAll(t, NewReader(&buf, ArtifactNames()...)); len(got) != 0 {
		t.Fatalf("expected no events, got %v", got)
	}
}

func TestCompressionFor(t *testing.T) {
	tests := map[string]Compression{
		"enwiki-latest-pages-articles.xml.bz2": CompressionBzip2,
		"artifact.xml.gz":                      CompressionGzip,
		"artifact.xml.zst":                     CompressionZstd,
		"dump.xml":                             CompressionNone,
	}
	for name, want := range tests {
		if got := CompressionFor(name); got != want {
			t.Fatalf("%s: got %q, want %q", name, got, want)
		}
	}
}

func TestCompressed_RoundTrip(t *testing.T) {
	for _, name := range []string{"a.xml", "a.xml.gz", "a.xml.zst"} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			w, err := CreateCompressed(&buf, name)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if _, err := io.WriteString(w, sampleDump); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			r, err := OpenCompressed(&buf, name)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer r.Close()
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(got) != sampleDump {
				t.Fatalf("round trip changed content")
			}
		})
	}
}

func TestCreateCompressed_Bzip2Unsupported(t *testing.T) {
	if _, err := CreateCompressed(io.Discard, "out.bz2"); err == nil {
		t.Fatal("expected bzip2 output to be rejected")
	}
}
