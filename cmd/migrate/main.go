package main

import (
	"database/sql"
	"flag"
	"log"

	"toolshed-backend/internal/config"
	"toolshed-backend/internal/logger"
	"toolshed-backend/migrations"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	command := flag.String("command", "up", "goose command: up, down, status, version")
	flag.Parse()

	// .env is optional; real deployments export variables directly
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set goose dialect: %v", err)
	}

	logger.Info("Running migrations", "command", *command, "database", cfg.Database.Database)
	if err := goose.Run(*command, db, "."); err != nil {
		logger.Error("Migration failed", "command", *command, "error", err)
		log.Fatalf("Migration failed: %v", err)
	}
	logger.Info("Migrations completed", "command", *command)
}
