package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OFFIS-RIT/wikigraph/internal/importer"
	"github.com/OFFIS-RIT/wikigraph/internal/runs"
	"github.com/OFFIS-RIT/wikigraph/pkg/common"
	"github.com/OFFIS-RIT/wikigraph/pkg/leaselock"
	"github.com/OFFIS-RIT/wikigraph/pkg/logger"
)

// ImportMessage asks a worker to import DumpPath into GraphID.
type ImportMessage struct {
	RunID    string `json:"run_id"`
	GraphID  string `json:"graph_id"`
	DumpPath string `json:"dump_path"`
	Store    string `json:"store,omitempty"`
}

func (m ImportMessage) Validate() error {
	if m.RunID == "" || m.GraphID == "" || m.DumpPath == "" {
		return errors.New("import message needs run_id, graph_id and dump_path")
	}
	return nil
}

type runRecorder interface {
	MarkRunning(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, stats common.ImportStats) error
	Fail(ctx context.Context, id string, stats common.ImportStats, cause error) error
}

type locker interface {
	WithLease(ctx context.Context, key string, opts leaselock.Options, fn func(ctx context.Context) error) error
}

// ImportHandler processes import messages. Import defaults to
// importer.Run on Pool.
type ImportHandler struct {
	Runs   runRecorder
	Locks  locker
	Config importer.Config
	Import func(ctx context.Context, cfg importer.Config, path string) (common.ImportStats, error)
}

func NewImportHandler(pool *pgxpool.Pool, cfg importer.Config) *ImportHandler {
	return &ImportHandler{
		Runs:   runs.NewRepository(pool),
		Locks:  leaselock.New(pool),
		Config: cfg,
		Import: func(ctx context.Context, cfg importer.Config, path string) (common.ImportStats, error) {
			return importer.Run(ctx, cfg, pool, path)
		},
	}
}

// ProcessImportMessage runs one import while holding the graph's lease. A
// busy lease is returned as an error so the message goes through the retry
// queue.
func (h *ImportHandler) ProcessImportMessage(ctx context.Context, msg string) error {
	var data ImportMessage
	if err := json.Unmarshal([]byte(msg), &data); err != nil {
		return fmt.Errorf("failed to decode import message: %w", err)
	}
	if err := data.Validate(); err != nil {
		return err
	}

	cfg := h.Config
	cfg.GraphID = data.GraphID
	if data.Store != "" {
		cfg.Store = data.Store
	}

	return h.Locks.WithLease(ctx, leaselock.GraphKey(data.GraphID), leaselock.Options{}, func(ctx context.Context) error {
		if err := h.Runs.MarkRunning(ctx, data.RunID); err != nil {
			return fmt.Errorf("failed to mark run %s as running: %w", data.RunID, err)
		}
		logger.Info("[Queue] Import started", "run_id", data.RunID, "graph_id", data.GraphID, "dump", data.DumpPath)

		stats, err := h.Import(ctx, cfg, data.DumpPath)
		recordCtx := context.WithoutCancel(ctx)
		if err != nil {
			if failErr := h.Runs.Fail(recordCtx, data.RunID, stats, err); failErr != nil {
				logger.Error("[Queue] Failed to record failed run", "run_id", data.RunID, "err", failErr)
			}
			return fmt.Errorf("import %s failed: %w", data.RunID, err)
		}
		if err := h.Runs.Complete(recordCtx, data.RunID, stats); err != nil {
			return fmt.Errorf("failed to complete run %s: %w", data.RunID, err)
		}
		logger.Info("[Queue] Import completed",
			"run_id", data.RunID,
			"pages", stats.Pages,
			"nodes", stats.Nodes,
			"links", stats.Links,
			"bad_links", stats.BadLinks,
		)
		return nil
	})
}
