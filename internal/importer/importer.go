// Package importer wires the graph pipeline to its configured storage
// engine, title index and dump loader.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OFFIS-RIT/wikigraph/internal/util"
	"github.com/OFFIS-RIT/wikigraph/pkg/common"
	"github.com/OFFIS-RIT/wikigraph/pkg/graph"
	"github.com/OFFIS-RIT/wikigraph/pkg/index"
	"github.com/OFFIS-RIT/wikigraph/pkg/loader"
	loaderio "github.com/OFFIS-RIT/wikigraph/pkg/loader/io"
	loaders3 "github.com/OFFIS-RIT/wikigraph/pkg/loader/s3"
	loaderweb "github.com/OFFIS-RIT/wikigraph/pkg/loader/web"
	"github.com/OFFIS-RIT/wikigraph/pkg/logger"
	"github.com/OFFIS-RIT/wikigraph/pkg/store"
	"github.com/OFFIS-RIT/wikigraph/pkg/store/memory"
	neo4jstore "github.com/OFFIS-RIT/wikigraph/pkg/store/neo4j"
	pgxstore "github.com/OFFIS-RIT/wikigraph/pkg/store/pgx"
)

const (
	StoreMemory = "memory"
	StorePgx    = "pgx"
	StoreNeo4j  = "neo4j"

	IndexMemory = "memory"
	IndexBadger = "badger"
)

// Config selects and configures the components of an import.
type Config struct {
	GraphID        string
	Store          string
	Index          string
	IndexPath      string
	BatchSize      int
	ParallelWrites int
	TempDir        string

	Neo4j neo4jstore.NewClientParams
	S3    loaders3.NewS3DumpLoaderParams
}

// ConfigFromEnv reads the GRAPH_*, TITLE_INDEX*, NEO4J_* and AWS_* variables.
func ConfigFromEnv() Config {
	return Config{
		GraphID:        util.GetEnvString("GRAPH_ID", "wiki"),
		Store:          util.GetEnvString("GRAPH_STORE", StoreMemory),
		Index:          util.GetEnvString("TITLE_INDEX", IndexMemory),
		IndexPath:      util.GetEnv("TITLE_INDEX_PATH"),
		BatchSize:      util.GetEnvInt("GRAPH_BATCH_SIZE", 10000),
		ParallelWrites: util.GetEnvInt("GRAPH_PARALLEL_WRITES", 4),
		TempDir:        util.GetEnv("GRAPH_TEMP_DIR"),
		Neo4j: neo4jstore.NewClientParams{
			URI:         util.GetEnv("NEO4J_URI"),
			User:        util.GetEnv("NEO4J_USER"),
			Password:    util.GetEnv("NEO4J_PASSWORD"),
			Database:    util.GetEnv("NEO4J_DATABASE"),
			MaxPoolSize: util.GetEnvInt("NEO4J_MAX_POOL_SIZE", 50),
			Timeout:     util.GetEnvDuration("NEO4J_TIMEOUT", 0),
		},
		S3: loaders3.NewS3DumpLoaderParams{
			Bucket:    util.GetEnv("AWS_BUCKET"),
			Endpoint:  util.GetEnv("AWS_ENDPOINT"),
			Region:    util.GetEnv("AWS_REGION"),
			AccessKey: util.GetEnv("AWS_ACCESS_KEY"),
			SecretKey: util.GetEnv("AWS_SECRET_KEY"),
		},
	}
}

// Validate checks the component names and the settings they require.
func (c Config) Validate() error {
	if c.GraphID == "" {
		return fmt.Errorf("graph id is required")
	}
	switch c.Store {
	case StoreMemory, StorePgx:
	case StoreNeo4j:
		if c.Neo4j.URI == "" {
			return fmt.Errorf("NEO4J_URI is required for the neo4j store")
		}
	default:
		return fmt.Errorf("unknown graph store %q", c.Store)
	}
	switch c.Index {
	case IndexMemory, IndexBadger:
	default:
		return fmt.Errorf("unknown title index %q", c.Index)
	}
	return nil
}

// OpenStorage creates the configured storage engine. pool is only used, and
// then required, by the pgx engine.
func OpenStorage(ctx context.Context, cfg Config, pool *pgxpool.Pool) (store.GraphStorage, error) {
	switch cfg.Store {
	case StoreMemory:
		return memory.NewGraphMemoryStorage(), nil
	case StorePgx:
		if pool == nil {
			return nil, fmt.Errorf("the pgx store needs a database connection")
		}
		return pgxstore.NewGraphDBStorageWithConnection(pool, cfg.GraphID)
	case StoreNeo4j:
		client, err := neo4jstore.NewClient(ctx, cfg.Neo4j)
		if err != nil {
			return nil, err
		}
		st, err := neo4jstore.NewGraphNeo4jStorage(client, cfg.GraphID)
		if err != nil {
			client.Close(ctx)
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown graph store %q", cfg.Store)
	}
}

// OpenIndex creates the configured title index. A badger index without an
// explicit path lives below the temp directory, one directory per graph.
func OpenIndex(cfg Config) (index.TitleIndex, error) {
	switch cfg.Index {
	case IndexMemory:
		return index.NewMemoryIndex(), nil
	case IndexBadger:
		path := cfg.IndexPath
		if path == "" {
			path = filepath.Join(tempDir(cfg), "wikigraph-index-"+cfg.GraphID)
		}
		return index.NewBadgerIndex(index.BadgerIndexParams{Path: path})
	default:
		return nil, fmt.Errorf("unknown title index %q", cfg.Index)
	}
}

// OpenLoader picks the loader for path: s3:// URIs are read from object
// storage, http(s) URLs are downloaded, everything else comes from the
// local filesystem.
func OpenLoader(ctx context.Context, cfg Config, path string) (loader.DumpLoader, error) {
	if _, _, ok := loaders3.ParseURI(path); ok {
		return loaders3.NewS3DumpLoader(ctx, cfg.S3)
	}
	if loaderweb.IsURL(path) {
		return loaderweb.NewWebDumpLoader(), nil
	}
	return loaderio.NewIODumpLoader(), nil
}

// Run imports the dump at path into the configured store.
func Run(ctx context.Context, cfg Config, pool *pgxpool.Pool, path string) (common.ImportStats, error) {
	if err := cfg.Validate(); err != nil {
		return common.ImportStats{}, err
	}
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
		BatchSize:      cfg.BatchSize,
		ParallelWrites: cfg.ParallelWrites,
	})
	if err != nil {
		return common.ImportStats{}, err
	}

	l, err := OpenLoader(ctx, cfg, path)
	if err != nil {
		return common.ImportStats{}, err
	}
	in, err := loader.Open(ctx, l, path)
	if err != nil {
		return common.ImportStats{}, err
	}
	defer in.Close()

	st, err := OpenStorage(ctx, cfg, pool)
	if err != nil {
		return common.ImportStats{}, err
	}
	defer func() {
		if err := st.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("[Import] Failed to close storage", "err", err)
		}
	}()

	idx, err := OpenIndex(cfg)
	if err != nil {
		return common.ImportStats{}, err
	}
	defer func() {
		if err := idx.Close(); err != nil {
			logger.Warn("[Import] Failed to close title index", "err", err)
		}
	}()

	logger.Info("[Import] Starting", "graph_id", cfg.GraphID, "dump", path, "store", cfg.Store, "index", cfg.Index)
	return client.ProcessDump(ctx, graph.ProcessDumpParams{
		Dump:    in,
		Storage: st,
		Index:   idx,
		TempDir: cfg.TempDir,
	})
}

func tempDir(cfg Config) string {
	if cfg.TempDir != "" {
		return cfg.TempDir
	}
	return os.TempDir()
}
