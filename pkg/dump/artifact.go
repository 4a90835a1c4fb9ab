package dump

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/OFFIS-RIT/wikigraph/pkg/common"
	"github.com/OFFIS-RIT/wikigraph/pkg/refcodec"
)

// Element names of the intermediate artifact. Each page becomes
//
//	<p><t>title</t><l>encoded</l><h>encoded</h>...</p>
//
// inside a single <d> root, with one reference element per reference named
// after its type tag.
const (
	ArtifactRoot  = "d"
	ArtifactPage  = "p"
	ArtifactTitle = "t"
)

// ArtifactNames returns the element names the node and link passes read.
func ArtifactNames() []string {
	names := []string{ArtifactTitle}
	for _, t := range common.RefTypes {
		names = append(names, t.Tag())
	}
	return names
}

// ArtifactWriter writes the intermediate reference artifact.
type ArtifactWriter struct {
	w      *bufio.Writer
	opened bool
	closed bool
}

func NewArtifactWriter(w io.Writer) *ArtifactWriter {
	return &ArtifactWriter{w: bufio.NewWriterSize(w, 1<<16)}
}

// WritePage appends one page record. refs are written in the given order.
func (a *ArtifactWriter) WritePage(title string, refs []common.Reference) error {
	if a.closed {
		return fmt.Errorf("artifact writer is closed")
	}
	if !a.opened {
		if _, err := a.w.WriteString("<" + ArtifactRoot + ">\n"); err != nil {
			return fmt.Errorf("failed to write artifact header: %w", err)
		}
		a.opened = true
	}

	a.w.WriteString("<" + ArtifactPage + ">")
	if err := a.element(ArtifactTitle, title); err != nil {
		return err
	}
	for _, ref := range refs {
		if err := a.element(ref.Type.Tag(), refcodec.Encode(ref)); err != nil {
			return err
		}
	}
	if _, err := a.w.WriteString("</" + ArtifactPage + ">\n"); err != nil {
		return fmt.Errorf("failed to write page %q: %w", title, err)
	}
	return nil
}

func (a *ArtifactWriter) element(name, value string) error {
	a.w.WriteString("<" + name + ">")
	if err := xml.EscapeText(a.w, []byte(value)); err != nil {
		return fmt.Errorf("failed to write <%s> element: %w", name, err)
	}
	_, err := a.w.WriteString("</" + name + ">")
	return err
}

// Close writes the closing root element and flushes buffered output. It
// does not close the underlying writer.
func (a *ArtifactWriter) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if !a.opened {
		a.w.WriteString("<" + ArtifactRoot + ">\n")
	}
	a.w.WriteString("</" + ArtifactRoot + ">\n")
	if err := a.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush artifact: %w", err)
	}
	return nil
}
