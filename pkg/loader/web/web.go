package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// WebDumpLoader streams dumps over HTTP(S), for example straight from a
// dumps.wikimedia.org mirror.
type WebDumpLoader struct {
	client *http.Client
}

// NewWebDumpLoader creates a loader using http.DefaultClient.
func NewWebDumpLoader() *WebDumpLoader {
	return &WebDumpLoader{client: http.DefaultClient}
}

// NewWebDumpLoaderWithClient creates a loader with a custom client.
func NewWebDumpLoaderWithClient(client *http.Client) *WebDumpLoader {
	return &WebDumpLoader{client: client}
}

// IsURL reports whether path is an http:// or https:// URL.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Open starts the download and returns the response body. The body is not
// buffered.
func (l *WebDumpLoader) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch url: unexpected status %s", resp.Status)
	}

	return resp.Body, nil
}
