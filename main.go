package main

import (
	"log"
	"net/http"

	"telyourstory/config"
	"telyourstory/config/database"
	"telyourstory/internal/feed"
	"telyourstory/pkg/blobstore"
	"telyourstory/pkg/logger"
	"telyourstory/router"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}

	logger.Init()
	defer logger.Log.Sync()

	cfg := config.Load()

	db := database.Connect()
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Sugar.Fatalf("Failed to run migrations: %v", err)
	}

	blobs := blobstore.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.StorageBucket)

	// The hub's event loop runs for the lifetime of the process.
	hub := feed.NewHub()
	go hub.Run()

	handler := router.Setup(db, blobs, hub, cfg)

	logger.Sugar.Infof("telyourstory listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		logger.Sugar.Fatalf("Server stopped: %v", err)
	}
}
