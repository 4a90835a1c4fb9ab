package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OFFIS-RIT/wikigraph/internal/importer"
	"github.com/OFFIS-RIT/wikigraph/pkg/graph"
	"github.com/OFFIS-RIT/wikigraph/pkg/logger"
)

var buildCmd = &cobra.Command{
	Use:   "build <artifact>",
	Short: "Create the graph from an extracted artifact",
	Long: `Build replaces the configured graph with the nodes and relationships of
an artifact written by extract.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
		BatchSize:      cfg.BatchSize,
		ParallelWrites: cfg.ParallelWrites,
	})
	if err != nil {
		return err
	}

	artifact, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer artifact.Close()

	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	st, err := importer.OpenStorage(ctx, cfg, pool)
	if err != nil {
		return err
	}
	defer st.Close(context.WithoutCancel(ctx))

	idx, err := importer.OpenIndex(cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := st.Prepare(ctx); err != nil {
		return fmt.Errorf("failed to prepare storage: %w", err)
	}
	stats, err := client.Build(ctx, artifact, artifact.Name(), st, idx)
	if err != nil {
		return err
	}
	logger.Info("[Graph] Build completed", "nodes", stats.Nodes, "links", stats.Links, "bad_links", stats.BadLinks)
	return printStats(cmd.OutOrStdout(), stats)
}
