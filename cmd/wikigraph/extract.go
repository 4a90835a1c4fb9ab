package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OFFIS-RIT/wikigraph/internal/importer"
	"github.com/OFFIS-RIT/wikigraph/pkg/common"
	"github.com/OFFIS-RIT/wikigraph/pkg/dump"
	"github.com/OFFIS-RIT/wikigraph/pkg/graph"
	"github.com/OFFIS-RIT/wikigraph/pkg/loader"
)

var extractCmd = &cobra.Command{
	Use:   "extract <dump> [artifact]",
	Short: "Extract the references of a dump into an artifact",
	Long: `Extract scans every article of the dump and writes its title and
classified references to the artifact. The artifact suffix (.gz, .zst)
selects its compression; "-" or no artifact writes plain XML to stdout.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
		BatchSize:      cfg.BatchSize,
		ParallelWrites: cfg.ParallelWrites,
	})
	if err != nil {
		return err
	}

	l, err := importer.OpenLoader(ctx, cfg, args[0])
	if err != nil {
		return err
	}
	in, err := loader.Open(ctx, l, args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	target := "-"
	if len(args) == 2 {
		target = args[1]
	}
	var out io.Writer = cmd.OutOrStdout()
	var file io.Closer
	if target != "-" {
		f, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("failed to create artifact: %w", err)
		}
		out, file = f, f
	}

	stats, err := writeArtifact(ctx, client, in, out, file, target)
	if err != nil {
		return err
	}

	if target == "-" {
		return nil
	}
	return printStats(cmd.OutOrStdout(), stats)
}

// writeArtifact runs the extraction into out and closes the compressor and
// file, if any. A failed close fails the extraction.
func writeArtifact(ctx context.Context, client *graph.GraphClient, in io.Reader, out io.Writer, file io.Closer, target string) (common.ImportStats, error) {
	w, err := dump.CreateCompressed(out, target)
	if err != nil {
		if file != nil {
			file.Close()
		}
		return common.ImportStats{}, err
	}
	stats, err := client.Extract(ctx, in, w)
	if closeErr := w.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to finish artifact: %w", closeErr)
	}
	if file != nil {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close artifact: %w", closeErr)
		}
	}
	return stats, err
}
