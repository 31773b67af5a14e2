// Command server runs the fitness tracker HTTP API.
//
// Configuration comes from an optional YAML file (-config), a .env file and
// the environment; see internal/config. JWT_SECRET is the only required
// setting.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/fittrack/internal/config"
	"github.com/sakif/fittrack/internal/logger"
	"github.com/sakif/fittrack/internal/server"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.Log)

	// The SQLite driver does not create missing parent directories.
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		log.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		log.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
