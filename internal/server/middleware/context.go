package middleware

import (
	"fmt"
	"sync"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/synapse-kb/synapse/backend/internal/db"
	"github.com/synapse-kb/synapse/backend/pkg/ai"
	"github.com/synapse-kb/synapse/backend/pkg/store"
)

// AppUser is the authenticated caller, populated by AuthMiddleware.
type AppUser struct {
	UserID   int64
	Username string
	Role     string
}

// App bundles the shared dependencies every handler needs. The active
// graph store can be swapped between registered backends at runtime, so
// access goes through GraphStore and SetBackend rather than a bare field.
type App struct {
	DBConn   db.DBTX
	Queue    *amqp091.Channel
	S3       *s3.Client
	AiClient ai.GraphAIClient

	JWTSecret  []byte
	Key        *keyfunc.Keyfunc
	TokenHours int

	AsyncThreshold int64

	mu      sync.RWMutex
	backend string
	stores  map[string]store.GraphStore
}

// RegisterStore adds a named graph store backend. The first registered
// backend becomes the active one.
func (a *App) RegisterStore(name string, s store.GraphStore) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stores == nil {
		a.stores = make(map[string]store.GraphStore)
	}
	a.stores[name] = s
	if a.backend == "" {
		a.backend = name
	}
}

// GraphStore returns the active graph store.
func (a *App) GraphStore() store.GraphStore {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stores[a.backend]
}

// Backend returns the name of the active graph store.
func (a *App) Backend() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.backend
}

// SetBackend switches the active graph store. Unregistered names are
// rejected so a typo cannot leave the app without a store.
func (a *App) SetBackend(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.stores[name]; !ok {
		return fmt.Errorf("unknown graph backend: %s", name)
	}
	a.backend = name
	return nil
}

// AppContext carries the App and the authenticated user through the
// request chain. Handlers cast echo.Context to it.
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
