package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/OFFIS-RIT/wikigraph/internal/util"
	"github.com/OFFIS-RIT/wikigraph/pkg/common"
	"github.com/OFFIS-RIT/wikigraph/pkg/dump"
	"github.com/OFFIS-RIT/wikigraph/pkg/index"
	"github.com/OFFIS-RIT/wikigraph/pkg/refcodec"
	"github.com/OFFIS-RIT/wikigraph/pkg/store"
)

// NormalizeTitle is the single capitalization fallback used when a
// reference does not resolve as written. Titles shorter than two characters
// are upper-cased entirely, longer titles only in their first character.
func NormalizeTitle(title string) string {
	if utf8.RuneCountInString(title) < 2 {
		return strings.ToUpper(title)
	}
	first, size := utf8.DecodeRuneInString(title)
	return string(unicode.ToUpper(first)) + title[size:]
}

// Linker resolves references against a frozen title index and writes the
// resulting relationships in batches. Batches are flushed concurrently, up to
// the configured number of writes in flight. Link itself must be called from
// a single goroutine.
type Linker struct {
	idx       index.TitleIndex
	storage   store.GraphStorage
	batchSize int

	eg      *errgroup.Group
	ctx     context.Context
	pending []common.Relationship

	links    atomic.Int64
	badLinks atomic.Int64
}

type NewLinkerParams struct {
	Index          index.TitleIndex
	Storage        store.GraphStorage
	BatchSize      int
	ParallelWrites int
}

// NewLinker creates a Linker. ctx bounds every flush; the first failed flush
// cancels the rest.
func NewLinker(ctx context.Context, params NewLinkerParams) *Linker {
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	parallel := params.ParallelWrites
	if parallel <= 0 {
		parallel = defaultParallelWrites
	}
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallel)
	return &Linker{
		idx:       params.Index,
		storage:   params.Storage,
		batchSize: batchSize,
		eg:        eg,
		ctx:       gCtx,
		pending:   make([]common.Relationship, 0, batchSize),
	}
}

// Resolve looks title up as written and, failing that, in its normalized
// form.
func (l *Linker) Resolve(title string) (int64, bool, error) {
	id, ok, err := l.idx.Lookup(title)
	if err != nil || ok {
		return id, ok, err
	}
	normalized := NormalizeTitle(title)
	if normalized == title {
		return 0, false, nil
	}
	return l.idx.Lookup(normalized)
}

// Link queues a relationship from source to the reference's target. An
// unresolved target is counted as a bad link and is not an error.
func (l *Linker) Link(source int64, ref common.Reference) error {
	if err := l.ctx.Err(); err != nil {
		return err
	}
	target, ok, err := l.Resolve(ref.Title)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", ref.Title, err)
	}
	if !ok {
		l.badLinks.Add(1)
		badLinks.Inc()
		return nil
	}

	l.pending = append(l.pending, common.Relationship{
		From:     source,
		To:       target,
		Type:     ref.Type,
		Distance: ref.Distance,
	})
	if len(l.pending) >= l.batchSize {
		l.flush()
	}
	return nil
}

// flush hands the pending batch to a writer goroutine. It blocks while the
// maximum number of writes is in flight.
func (l *Linker) flush() {
	if len(l.pending) == 0 {
		return
	}
	batch := l.pending
	l.pending = make([]common.Relationship, 0, l.batchSize)

	l.eg.Go(func() error {
		n, err := l.storage.CreateRelationships(l.ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to create %d relationships: %w", len(batch), err)
		}
		l.links.Add(n)
		for _, rel := range batch {
			linksCreated.WithLabelValues(rel.Type.String()).Inc()
		}
		return nil
	})
}

// Close flushes the remaining relationships, waits for every write and
// returns the link counters.
func (l *Linker) Close() (common.ImportStats, error) {
	l.flush()
	err := l.eg.Wait()
	return l.Stats(), err
}

// Stats returns the counters accumulated so far.
func (l *Linker) Stats() common.ImportStats {
	return common.ImportStats{
		Links:    l.links.Load(),
		BadLinks: l.badLinks.Load(),
	}
}

// CreateRelationships reads the artifact again and links every reference of
// a page to the page's node. idx must be frozen and contain every node.
func (g *GraphClient) CreateRelationships(
	ctx context.Context,
	artifact io.Reader,
	storeClient store.GraphStorage,
	idx index.TitleIndex,
) (common.ImportStats, error) {
	reader := dump.NewReader(artifact, dump.ArtifactNames()...)
	linker := NewLinker(ctx, NewLinkerParams{
		Index:          idx,
		Storage:        storeClient,
		BatchSize:      g.batchSize,
		ParallelWrites: g.parallelWrites,
	})
	progress := util.NewProgressCounter("[Graph] Linking pages", 30*time.Second)

	err := g.linkArtifact(ctx, reader, linker, progress)
	stats, closeErr := linker.Close()
	// A failed flush cancels the linker, so the read loop only sees
	// context.Canceled. The flush error is the cause.
	if closeErr != nil && (err == nil || errors.Is(err, context.Canceled) && ctx.Err() == nil) {
		err = closeErr
	}
	if err != nil {
		return stats, err
	}
	progress.Done()
	return stats, nil
}

func (g *GraphClient) linkArtifact(ctx context.Context, reader *dump.Reader, linker *Linker, progress *util.ProgressCounter) error {
	source := int64(-1)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		el, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read artifact: %w", err)
		}

		if el.Name == dump.ArtifactTitle {
			id, ok, err := linker.idx.Lookup(el.Value)
			if err != nil {
				return fmt.Errorf("failed to look up page %q: %w", el.Value, err)
			}
			if !ok {
				return fmt.Errorf("page %q has no node, the title index is incomplete", el.Value)
			}
			source = id
			progress.Add(1)
			continue
		}

		ref, err := refcodec.DecodeElement(el.Name, el.Value)
		if err != nil {
			return err
		}
		if source < 0 {
			return fmt.Errorf("reference %q precedes any page title: %w", el.Value, refcodec.ErrMalformed)
		}
		if err := linker.Link(source, ref); err != nil {
			return err
		}
	}
}
