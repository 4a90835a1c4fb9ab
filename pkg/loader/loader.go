// Package loader opens dump files from the places imports read them from.
package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/OFFIS-RIT/wikigraph/pkg/dump"
)

// DumpLoader defines the interface for opening a dump by path.
// Implementations may read from disk, object storage or other sources. The
// returned stream is the raw, possibly compressed, file content.
type DumpLoader interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Open opens path with l and wraps the stream with the decompressor matching
// the path suffix. Closing the result closes both.
//
// Example:
//
//	r, err := loader.Open(ctx, io.NewIODumpLoader(), "enwiki-latest-pages-articles.xml.bz2")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer r.Close()
func Open(ctx context.Context, l DumpLoader, path string) (io.ReadCloser, error) {
	raw, err := l.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump %s: %w", path, err)
	}
	decoded, err := dump.OpenCompressed(raw, path)
	if err != nil {
		raw.Close()
		return nil, err
	}
	return &stackedReadCloser{ReadCloser: decoded, raw: raw}, nil
}

type stackedReadCloser struct {
	io.ReadCloser
	raw io.Closer
}

func (s *stackedReadCloser) Close() error {
	err := s.ReadCloser.Close()
	if rawErr := s.raw.Close(); err == nil {
		err = rawErr
	}
	return err
}
