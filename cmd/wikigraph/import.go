package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OFFIS-RIT/wikigraph/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <dump>",
	Short: "Extract a dump and build its graph in one run",
	Long: `Import runs extract and build back to back through a temporary artifact.
The dump may be a local path, "-" for stdin, or an s3://bucket/key URI.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}
	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	stats, err := importer.Run(ctx, cfg, pool, args[0])
	if err != nil {
		return err
	}
	return printStats(cmd.OutOrStdout(), stats)
}
