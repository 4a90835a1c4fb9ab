package io

import (
	"context"
	"fmt"
	stdio "io"
	"os"
)

// IODumpLoader opens dumps from the local filesystem.
type IODumpLoader struct{}

// NewIODumpLoader creates a new filesystem-based dump loader.
func NewIODumpLoader() *IODumpLoader {
	return &IODumpLoader{}
}

// Open opens the file at path for streaming. "-" reads standard input.
func (l *IODumpLoader) Open(ctx context.Context, path string) (stdio.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path == "-" {
		return stdio.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}
