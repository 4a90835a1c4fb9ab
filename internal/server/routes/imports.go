package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/wikigraph/internal/queue"
	"github.com/OFFIS-RIT/wikigraph/internal/runs"
	"github.com/OFFIS-RIT/wikigraph/internal/server/middleware"
	"github.com/OFFIS-RIT/wikigraph/pkg/leaselock"
	loaders3 "github.com/OFFIS-RIT/wikigraph/pkg/loader/s3"
	"github.com/OFFIS-RIT/wikigraph/pkg/logger"
)

// CreateImportHandler records a pending run and queues it for a worker.
func CreateImportHandler(c echo.Context) error {
	type createImportBody struct {
		GraphID  string `json:"graph_id" validate:"required,max=128"`
		DumpPath string `json:"dump_path" validate:"required"`
		Store    string `json:"store" validate:"omitempty,oneof=memory pgx neo4j"`
	}

	data := new(createImportBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	if bucket, key, ok := loaders3.ParseURI(data.DumpPath); ok {
		if app.Dumps == nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Object storage is not configured"})
		}
		exists, err := app.Dumps.Exists(ctx, bucket, key)
		if err != nil {
			logger.Error("Failed to check dump", "dump", data.DumpPath, "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}
		if !exists {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Dump not found"})
		}
	}

	_, busy, err := app.Locks.Holder(ctx, leaselock.GraphKey(data.GraphID))
	if err != nil {
		logger.Error("Failed to read graph lock", "graph_id", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if busy {
		return c.JSON(http.StatusConflict, map[string]string{"error": "An import for this graph is already running"})
	}

	run, err := app.Runs.Create(ctx, runs.CreateParams{
		GraphID:  data.GraphID,
		DumpPath: data.DumpPath,
		Store:    data.Store,
	})
	if err != nil {
		logger.Error("Failed to create import run", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	msg, err := json.Marshal(queue.ImportMessage{
		RunID:    run.ID,
		GraphID:  run.GraphID,
		DumpPath: run.DumpPath,
		Store:    run.Store,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if err := app.Queue.Publish(ctx, queue.ImportQueue, msg); err != nil {
		logger.Error("Failed to queue import", "run_id", run.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusAccepted, run)
}

// GetImportHandler returns a run including its counters.
func GetImportHandler(c echo.Context) error {
	type getImportParams struct {
		ID string `param:"id" validate:"required"`
	}

	params := new(getImportParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	run, err := app.Runs.Get(c.Request().Context(), params.ID)
	if errors.Is(err, runs.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Import not found"})
	}
	if err != nil {
		logger.Error("Failed to load import run", "run_id", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, run)
}
