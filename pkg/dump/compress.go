package dump

import (
	"compress/bzip2"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression is chosen from the file name suffix.
type Compression string

const (
	CompressionNone  Compression = ""
	CompressionBzip2 Compression = "bz2"
	CompressionGzip  Compression = "gz"
	CompressionZstd  Compression = "zst"
)

func CompressionFor(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".bz2"):
		return CompressionBzip2
	case strings.HasSuffix(name, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(name, ".zst"):
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// OpenCompressed wraps r with a decompressor matching name. Closing the
// result releases the decompressor, not r.
func OpenCompressed(r io.Reader, name string) (io.ReadCloser, error) {
	switch CompressionFor(name) {
	case CompressionBzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", name, err)
		}
		return zr, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream %s: %w", name, err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

// CreateCompressed wraps w with a compressor matching name. Closing the
// result flushes the compressor, not w. bzip2 output is not supported.
func CreateCompressed(w io.Writer, name string) (io.WriteCloser, error) {
	switch CompressionFor(name) {
	case CompressionBzip2:
		return nil, fmt.Errorf("bzip2 output is not supported: %s", name)
	case CompressionGzip:
		zw, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip stream %s: %w", name, err)
		}
		return zw, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd stream %s: %w", name, err)
		}
		return zw, nil
	default:
		return nopWriteCloser{w}, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
