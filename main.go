// Package main is the entry point for the profile API server.
// It initializes all dependencies and starts the HTTP server.
package main

import (
	"context"
	"log"
	"os"

	"profileapi/src/app/server"
	"profileapi/src/infra/config"
	"profileapi/src/infra/db"
	"profileapi/src/infra/logger"
	"profileapi/src/infra/repo"
)

func main() {
	if err := run(); err != nil {
		log.Printf("fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from .env and environment variables
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log)
	log.Info("starting application",
		"port", cfg.Server.Port,
		"log_level", cfg.Log.Level,
		"pool_size", cfg.Database.PoolSize,
	)

	// The pool is created once here and injected; an unreachable database
	// does not stop startup.
	pool, err := db.Open(context.Background(), cfg.Database, logger.WithComponent(log, "db"))
	if err != nil {
		return err
	}
	defer pool.Close()

	profiles := repo.NewProfileRepository(pool, logger.WithComponent(log, "repo"))

	srv := server.New(cfg, log, pool, profiles)

	// Run blocks until shutdown signal is received
	return srv.Run()
}
