package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"spendwise-server/src/api"
	"spendwise-server/src/auth"
	"spendwise-server/src/config"
	"spendwise-server/src/db"
	"spendwise-server/src/db/postgres"
	"spendwise-server/src/db/sqlite"
	"spendwise-server/src/logging"
)

func main() {
	logging.Setup()
	cfg := config.Load()

	// Connect to database
	var store db.Store
	var err error
	switch cfg.DataBackend {
	case config.BackendSQLite:
		store, err = sqlite.New(cfg.SQLiteDBPath)
	default:
		store, err = postgres.Connect(context.Background(), cfg.DatabaseURL)
	}
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer store.Close()

	cache, err := db.NewCache()
	if err != nil {
		log.Fatalf("cache init failed: %v", err)
	}
	defer cache.Close()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	limiters := api.NewLimiters()
	defer limiters.Stop()

	router := api.NewRouter(store, cache, tokens, limiters, cfg.ClientURL, cfg.DevMode())

	slog.Info("API server running", "port", cfg.Port, "env", cfg.Env, "backend", cfg.DataBackend)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
