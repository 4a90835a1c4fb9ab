package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/OFFIS-RIT/wikigraph/pkg/common"
	"github.com/OFFIS-RIT/wikigraph/pkg/index"
	loaderio "github.com/OFFIS-RIT/wikigraph/pkg/loader/io"
	loaders3 "github.com/OFFIS-RIT/wikigraph/pkg/loader/s3"
	loaderweb "github.com/OFFIS-RIT/wikigraph/pkg/loader/web"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("GRAPH_ID", "dewiki")
	t.Setenv("GRAPH_STORE", "pgx")
	t.Setenv("GRAPH_BATCH_SIZE", "250")
	t.Setenv("TITLE_INDEX", "badger")

	cfg := ConfigFromEnv()
	if cfg.GraphID != "dewiki" || cfg.Store != StorePgx || cfg.Index != IndexBadger {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.BatchSize != 250 || cfg.ParallelWrites != 4 {
		t.Fatalf("unexpected sizes: batch=%d parallel=%d", cfg.BatchSize, cfg.ParallelWrites)
	}
}

func TestConfig_Validate(t *testing.T) {
	base := Config{GraphID: "wiki", Store: StoreMemory, Index: IndexMemory}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := map[string]Config{
		"missing graph id":  {Store: StoreMemory, Index: IndexMemory},
		"unknown store":     {GraphID: "wiki", Store: "sqlite", Index: IndexMemory},
		"unknown index":     {GraphID: "wiki", Store: StoreMemory, Index: "redis"},
		"neo4j without uri": {GraphID: "wiki", Store: StoreNeo4j, Index: IndexMemory},
	}
	for name, cfg := range tests {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestOpenIndex_Badger(t *testing.T) {
	cfg := Config{GraphID: "wiki", Index: IndexBadger, TempDir: t.TempDir()}
	idx, err := OpenIndex(cfg)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer idx.Close()
	if _, ok := idx.(*index.BadgerIndex); !ok {
		t.Fatalf("expected a badger index, got %T", idx)
	}
	if _, err := os.Stat(filepath.Join(cfg.TempDir, "wikigraph-index-wiki")); err != nil {
		t.Fatalf("expected index directory below the temp dir: %v", err)
	}
}

func TestOpenLoader(t *testing.T) {
	l, err := OpenLoader(context.Background(), Config{}, "/data/enwiki.xml.bz2")
	if err != nil {
		t.Fatalf("open loader: %v", err)
	}
	if _, ok := l.(*loaderio.IODumpLoader); !ok {
		t.Fatalf("expected a filesystem loader, got %T", l)
	}

	l, err = OpenLoader(context.Background(), Config{S3: loaders3.NewS3DumpLoaderParams{Region: "us-east-1"}}, "s3://dumps/enwiki.xml.bz2")
	if err != nil {
		t.Fatalf("open loader: %v", err)
	}
	if _, ok := l.(*loaders3.S3DumpLoader); !ok {
		t.Fatalf("expected an S3 loader, got %T", l)
	}

	l, err = OpenLoader(context.Background(), Config{}, "https://dumps.wikimedia.org/enwiki/latest/enwiki-latest-pages-articles.xml.bz2")
	if err != nil {
		t.Fatalf("open loader: %v", err)
	}
	if _, ok := l.(*loaderweb.WebDumpLoader); !ok {
		t.Fatalf("expected a web loader, got %T", l)
	}
}

func TestRun_MemoryStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.xml")
	dump := `<mediawiki>
<page><title>Paris</title><revision><text>[[France]]</text></revision></page>
<page><title>France</title><revision><text>#REDIRECT [[Europe]]</text></revision></page>
</mediawiki>`
	if err := os.WriteFile(path, []byte(dump), 0o600); err != nil {
		t.Fatalf("write dump: %v", err)
	}

	cfg := Config{GraphID: "wiki", Store: StoreMemory, Index: IndexMemory, TempDir: dir}
	stats, err := Run(context.Background(), cfg, nil, path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := common.ImportStats{Pages: 2, Nodes: 2, Links: 1, BadLinks: 1}
	if stats != want {
		t.Fatalf("unexpected stats: got %+v, want %+v", stats, want)
	}
}

func TestRun_PgxWithoutPool(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.xml")
	os.WriteFile(path, []byte("<mediawiki></mediawiki>"), 0o600)

	cfg := Config{GraphID: "wiki", Store: StorePgx, Index: IndexMemory, TempDir: dir}
	if _, err := Run(context.Background(), cfg, nil, path); err == nil {
		t.Fatal("expected an error without database connection")
	}
}
