package main

import (
	"os"

	"github.com/synapse-kb/synapse/backend/internal/config"
	"github.com/synapse-kb/synapse/backend/internal/server"
	"github.com/synapse-kb/synapse/backend/internal/util"
	"github.com/synapse-kb/synapse/backend/pkg/logger"
	"github.com/synapse-kb/synapse/backend/pkg/logger/console"
	"github.com/synapse-kb/synapse/backend/pkg/logger/file"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	flags := config.Flags("synapse-server")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		logger.Fatal("Failed to load configuration", "err", err)
	}

	debug := util.GetEnvBool("DEBUG", false)
	backends := []logger.LoggerInstance{
		console.NewConsoleLogger(console.ConsoleLoggerParams{
			Debug: debug,
		}),
	}
	if cfg.Log.File != "" {
		backends = append(backends, file.NewFileLogger(file.FileLoggerParams{
			Path:  cfg.Log.File,
			Debug: debug,
		}))
	}
	logger.Init(backends...)

	server.Init(cfg)
}
