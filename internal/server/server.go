package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/synapse-kb/synapse/backend/internal/config"
	"github.com/synapse-kb/synapse/backend/internal/queue"
	mid "github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/internal/storage"
	"github.com/synapse-kb/synapse/backend/internal/util"
	"github.com/synapse-kb/synapse/backend/pkg/ai"
	oai "github.com/synapse-kb/synapse/backend/pkg/ai/ollama"
	gai "github.com/synapse-kb/synapse/backend/pkg/ai/openai"
	"github.com/synapse-kb/synapse/backend/pkg/logger"
	"github.com/synapse-kb/synapse/backend/pkg/store/memory"
	"github.com/synapse-kb/synapse/backend/pkg/store/neo4j"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/jackc/pgx/v5"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init(cfg *config.Config) {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Invalid database URL", "err", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	conn, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	runMigrations(cfg.Database.URL)

	app := &mid.App{
		DBConn:         conn,
		AiClient:       NewAIClientFromEnv(),
		JWTSecret:      []byte(cfg.Auth.Secret),
		TokenHours:     cfg.Auth.Token.Hours,
		AsyncThreshold: cfg.Queue.Async.Threshold,
	}

	if cfg.Auth.JWKS != "" {
		k, err := keyfunc.NewDefault([]string{cfg.Auth.JWKS})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		app.Key = &k
	}

	memStore := memory.NewStore()
	app.RegisterStore("memory", memStore)
	defer memStore.Close(context.Background())

	if cfg.Neo4j.URI != "" {
		neoStore, err := neo4j.NewStore(neo4j.NewStoreParams{
			URI:      cfg.Neo4j.URI,
			User:     cfg.Neo4j.User,
			Password: cfg.Neo4j.Password,
		})
		if err != nil {
			logger.Error("Failed to connect to Neo4j, falling back to memory store", "err", err)
		} else {
			app.RegisterStore("neo4j", neoStore)
			defer neoStore.Close(context.Background())
		}
	}
	if err := app.SetBackend(cfg.Graph.Backend); err != nil {
		logger.Warn("Configured graph backend unavailable, using memory store", "backend", cfg.Graph.Backend)
		_ = app.SetBackend("memory")
	}

	if util.GetEnv("RABBITMQ_HOST") != "" {
		que := queue.Init()
		defer que.Close()
		ch, err := que.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		if err := queue.SetupQueues(ch, queue.QueueNames); err != nil {
			logger.Fatal("Failed to set up queues", "err", err)
		}
		app.Queue = ch
	}

	if util.GetEnv("AWS_BUCKET") != "" {
		app.S3 = storage.NewS3Client(ctx)
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("16M"))

	RegisterRoutes(e)

	go func() {
		port := strconv.Itoa(cfg.Port)
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// runMigrations applies pending schema migrations. An up-to-date schema is
// not an error.
func runMigrations(databaseURL string) {
	source := util.GetEnvString("MIGRATIONS_PATH", "file://db/migrations")
	m, err := migrate.New(source, databaseURL)
	if err != nil {
		logger.Fatal("Failed to init migrations", "err", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Failed to run migrations", "err", err)
	}
}

// NewAIClientFromEnv builds the language model client the AI_* environment
// variables describe. It returns nil when no model endpoint is configured,
// which switches the pipeline to heuristic extraction.
func NewAIClientFromEnv() ai.GraphAIClient {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
			AnswerModel:     util.GetEnv("AI_CHAT_ANSWER_MODEL"),
			ImageModel:      util.GetEnv("AI_CHAT_IMAGE_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		if util.GetEnv("AI_CHAT_KEY") == "" && util.GetEnv("AI_CHAT_URL") == "" {
			return nil
		}
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
			AnswerModel:     util.GetEnv("AI_CHAT_ANSWER_MODEL"),
			ImageModel:      util.GetEnv("AI_CHAT_IMAGE_MODEL"),

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),
		})
	}
}
