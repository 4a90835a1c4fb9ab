package middleware

import (
	"context"
	"io"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/wikigraph/internal/runs"
)

type AppUser struct {
	Subject     string
	Role        string
	Permissions []string
}

type RunStore interface {
	Create(ctx context.Context, params runs.CreateParams) (runs.Run, error)
	Get(ctx context.Context, id string) (runs.Run, error)
}

type LockInspector interface {
	Holder(ctx context.Context, key string) (string, bool, error)
}

type Publisher interface {
	Publish(ctx context.Context, queueName string, data []byte) error
}

type DumpStore interface {
	Exists(ctx context.Context, bucket, key string) (bool, error)
	Put(ctx context.Context, id, name string, file io.ReadSeeker) (string, error)
}

// App holds the dependencies shared by all handlers. Dumps is nil when no
// bucket is configured. Keyfunc verifies bearer tokens; without it only the
// master API key is accepted.
type App struct {
	Runs         RunStore
	Locks        LockInspector
	Queue        Publisher
	Dumps        DumpStore
	Keyfunc      jwt.Keyfunc
	MasterAPIKey string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
