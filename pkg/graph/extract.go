package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/OFFIS-RIT/wikigraph/internal/util"
	"github.com/OFFIS-RIT/wikigraph/pkg/common"
	"github.com/OFFIS-RIT/wikigraph/pkg/dump"
	"github.com/OFFIS-RIT/wikigraph/pkg/markup"
)

// Element names read from the encyclopedia dump.
const (
	dumpPage  = "page"
	dumpTitle = "title"
	dumpText  = "text"
)

// Extract reads articles from an XML dump and writes one artifact record
// per included article. Articles whose title contains a namespace separator
// are skipped and counted as excluded.
func (g *GraphClient) Extract(ctx context.Context, in io.Reader, artifact io.Writer) (common.ImportStats, error) {
	var stats common.ImportStats
	reader := dump.NewReader(in, dumpPage, dumpTitle, dumpText)
	writer := dump.NewArtifactWriter(artifact)
	progress := util.NewProgressCounter("[Graph] Extracting references", 30*time.Second)

	var article common.Article
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		el, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("failed to read dump: %w", err)
		}

		switch el.Name {
		case dumpTitle:
			article.Title = el.Value
		case dumpText:
			article.Text = el.Value
			article.HasText = true
		case dumpPage:
			if strings.Contains(article.Title, ":") {
				stats.Excluded++
				pagesExcluded.Inc()
			} else {
				if err := writer.WritePage(article.Title, markup.Extract(article)); err != nil {
					return stats, err
				}
				stats.Pages++
				pagesWritten.Inc()
				progress.Add(1)
			}
			article = common.Article{}
		}
	}

	if err := writer.Close(); err != nil {
		return stats, err
	}
	progress.Done()
	return stats, nil
}
