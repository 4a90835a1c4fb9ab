package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/OFFIS-RIT/wikigraph/internal/server/middleware"
	"github.com/OFFIS-RIT/wikigraph/pkg/logger"
)

// UploadDumpHandler stores a multipart "file" upload in the dump bucket and
// returns the dump_path to import it with.
func UploadDumpHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	if app.Dumps == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Object storage is not configured"})
	}

	upload, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	file, err := upload.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	defer file.Close()

	id, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	dumpPath, err := app.Dumps.Put(c.Request().Context(), id, upload.Filename, file)
	if err != nil {
		logger.Error("Failed to upload dump", "name", upload.Filename, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusCreated, map[string]string{"dump_path": dumpPath})
}
