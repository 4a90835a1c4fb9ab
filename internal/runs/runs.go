// Package runs records import runs and their outcome in the import_runs
// table.
package runs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/OFFIS-RIT/wikigraph/pkg/common"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var ErrNotFound = errors.New("import run not found")

// Run is one import of a dump into a graph.
type Run struct {
	ID         string             `json:"id"`
	GraphID    string             `json:"graph_id"`
	DumpPath   string             `json:"dump_path"`
	Store      string             `json:"store"`
	Status     Status             `json:"status"`
	Stats      common.ImportStats `json:"stats"`
	Error      *string            `json:"error,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	StartedAt  *time.Time         `json:"started_at,omitempty"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
}

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db dbConn
}

func NewRepository(db dbConn) *Repository {
	return &Repository{db: db}
}

type CreateParams struct {
	GraphID  string
	DumpPath string
	Store    string
}

// Create inserts a pending run with a fresh id.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Run, error) {
	id, err := gonanoid.New()
	if err != nil {
		return Run{}, fmt.Errorf("failed to generate run id: %w", err)
	}
	row := r.db.QueryRow(ctx, createRunSQL, id, params.GraphID, params.DumpPath, params.Store)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("failed to create import run: %w", err)
	}
	return run, nil
}

func (r *Repository) Get(ctx context.Context, id string) (Run, error) {
	run, err := scanRun(r.db.QueryRow(ctx, getRunSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to get import run %s: %w", id, err)
	}
	return run, nil
}

func (r *Repository) MarkRunning(ctx context.Context, id string) error {
	return r.exec(ctx, markRunningSQL, id)
}

// Complete stores the final counters of a run.
func (r *Repository) Complete(ctx context.Context, id string, stats common.ImportStats) error {
	return r.exec(ctx, completeRunSQL, id, stats.Pages, stats.Excluded, stats.Nodes, stats.Links, stats.BadLinks)
}

// Fail records cause and the counters reached before the failure.
func (r *Repository) Fail(ctx context.Context, id string, stats common.ImportStats, cause error) error {
	return r.exec(ctx, failRunSQL, id, stats.Pages, stats.Excluded, stats.Nodes, stats.Links, stats.BadLinks, cause.Error())
}

func (r *Repository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update import run %v: %w", args[0], err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRun(row pgx.Row) (Run, error) {
	var run Run
	var status string
	err := row.Scan(
		&run.ID,
		&run.GraphID,
		&run.DumpPath,
		&run.Store,
		&status,
		&run.Stats.Pages,
		&run.Stats.Excluded,
		&run.Stats.Nodes,
		&run.Stats.Links,
		&run.Stats.BadLinks,
		&run.Error,
		&run.CreatedAt,
		&run.StartedAt,
		&run.FinishedAt,
	)
	run.Status = Status(status)
	return run, err
}

const runColumns = `id, graph_id, dump_path, store, status, pages, excluded, nodes, links, bad_links, error, created_at, started_at, finished_at`

const createRunSQL = `
INSERT INTO import_runs (id, graph_id, dump_path, store)
VALUES ($1, $2, $3, $4)
RETURNING ` + runColumns

const getRunSQL = `SELECT ` + runColumns + ` FROM import_runs WHERE id = $1`

const markRunningSQL = `
UPDATE import_runs
SET status = 'running', started_at = now(), error = NULL
WHERE id = $1
`

const completeRunSQL = `
UPDATE import_runs
SET status = 'completed', pages = $2, excluded = $3, nodes = $4, links = $5, bad_links = $6, finished_at = now()
WHERE id = $1
`

const failRunSQL = `
UPDATE import_runs
SET status = 'failed', pages = $2, excluded = $3, nodes = $4, links = $5, bad_links = $6, error = $7, finished_at = now()
WHERE id = $1
`
