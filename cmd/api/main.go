package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/scribeworks/blog-backend/internal/config"
	"github.com/scribeworks/blog-backend/internal/db"
	"github.com/scribeworks/blog-backend/internal/repo"
	"github.com/scribeworks/blog-backend/internal/stats"
)

func main() {
	cfg := config.Load()

	setupLogger(cfg.LogFormat)

	// Fail fast on a default signing secret outside dev.
	if cfg.Env == "prod" && cfg.JWTSecret == config.DefaultJWTSecret {
		log.Fatal("JWT_SECRET must be set to a non-default value when ENV=prod")
	}

	database, err := db.Connect(
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBUser,
		cfg.DBPass,
		cfg.DBMaxOpenConns,
		cfg.DBMaxIdleConns,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(cfg.DatabaseURL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	slog.Info("connected to database", "host", cfg.DBHost, "db", cfg.DBName)

	cron := stats.Run(repo.NewUserRepo(database), repo.NewPostRepo(database))
	defer cron.Stop()

	r := newRouter(database, cfg)

	slog.Info("starting server", "port", cfg.Port, "env", cfg.Env)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(format string) {
	if format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}
