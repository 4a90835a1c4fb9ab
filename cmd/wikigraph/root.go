package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/OFFIS-RIT/wikigraph/internal/db"
	"github.com/OFFIS-RIT/wikigraph/internal/importer"
	"github.com/OFFIS-RIT/wikigraph/internal/util"
	"github.com/OFFIS-RIT/wikigraph/pkg/common"
	"github.com/OFFIS-RIT/wikigraph/pkg/logger"
	"github.com/OFFIS-RIT/wikigraph/pkg/logger/console"
)

var (
	flagGraphID        string
	flagStore          string
	flagIndex          string
	flagIndexPath      string
	flagBatchSize      int
	flagParallelWrites int
	flagTempDir        string
	flagDatabaseURL    string
	flagDebug          bool
	flagJSONLogs       bool

	cfg importer.Config
)

var rootCmd = &cobra.Command{
	Use:           "wikigraph",
	Short:         "Build a typed link graph from a Wikipedia dump",
	Long:          `wikigraph extracts links, redirects and related-article references from a MediaWiki XML dump and writes them as a graph into memory, PostgreSQL or Neo4j.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		util.LoadEnv()
		logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
			Debug: flagDebug || util.GetEnvBool("DEBUG", false),
			JSON:  flagJSONLogs || util.GetEnv("LOG_FORMAT") == "json",
		}))

		cfg = importer.ConfigFromEnv()
		flags := cmd.Flags()
		if flags.Changed("graph") {
			cfg.GraphID = flagGraphID
		}
		if flags.Changed("store") {
			cfg.Store = flagStore
		}
		if flags.Changed("index") {
			cfg.Index = flagIndex
		}
		if flags.Changed("index-path") {
			cfg.IndexPath = flagIndexPath
		}
		if flags.Changed("batch-size") {
			cfg.BatchSize = flagBatchSize
		}
		if flags.Changed("parallel") {
			cfg.ParallelWrites = flagParallelWrites
		}
		if flags.Changed("temp-dir") {
			cfg.TempDir = flagTempDir
		}
		if !flags.Changed("database-url") {
			flagDatabaseURL = util.GetEnv("DATABASE_URL")
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagGraphID, "graph", "", "graph id (env GRAPH_ID)")
	pf.StringVar(&flagStore, "store", "", "storage engine: memory, pgx or neo4j (env GRAPH_STORE)")
	pf.StringVar(&flagIndex, "index", "", "title index: memory or badger (env TITLE_INDEX)")
	pf.StringVar(&flagIndexPath, "index-path", "", "directory of the badger title index (env TITLE_INDEX_PATH)")
	pf.IntVar(&flagBatchSize, "batch-size", 0, "nodes and relationships per write (env GRAPH_BATCH_SIZE)")
	pf.IntVar(&flagParallelWrites, "parallel", 0, "concurrent relationship writes (env GRAPH_PARALLEL_WRITES)")
	pf.StringVar(&flagTempDir, "temp-dir", "", "directory for the intermediate artifact (env GRAPH_TEMP_DIR)")
	pf.StringVar(&flagDatabaseURL, "database-url", "", "PostgreSQL URL for the pgx store (env DATABASE_URL)")
	pf.BoolVar(&flagDebug, "debug", false, "enable debug logging")
	pf.BoolVar(&flagJSONLogs, "json-logs", false, "log JSON lines")

	rootCmd.AddCommand(extractCmd, buildCmd, importCmd)
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logger.Error("Command failed", "err", err)
	}
	return err
}

// openPool migrates and connects to PostgreSQL when the pgx store is
// selected. It returns a nil pool otherwise.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if cfg.Store != importer.StorePgx {
		return nil, nil
	}
	if flagDatabaseURL == "" {
		return nil, fmt.Errorf("the pgx store needs --database-url or DATABASE_URL")
	}
	if err := db.Migrate(flagDatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db.Connect(ctx, flagDatabaseURL)
}

func printStats(w io.Writer, stats common.ImportStats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
