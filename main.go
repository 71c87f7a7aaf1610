package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aouyang1/autoslides/api"
	"github.com/aouyang1/autoslides/api/client"
	"github.com/aouyang1/autoslides/config"
	"github.com/aouyang1/autoslides/shortener"
	"github.com/aouyang1/autoslides/store"
	"golang.org/x/oauth2/google"
)

var googleScopes = []string{
	"https://www.googleapis.com/auth/presentations",
	"https://www.googleapis.com/auth/drive",
}

func openBackend(cfg config.Config) (store.Backend, error) {
	switch cfg.PropertyBackend {
	case config.BackendS3:
		return store.NewS3Backend(cfg.AWSProfile, cfg.S3Bucket, cfg.S3Prefix)
	case config.BackendMemory:
		slog.Warn("using in-memory property backend, settings are lost on restart")
		return store.NewMemory(), nil
	case config.BackendSQLite:
		return store.NewDatabase(cfg.DatabasePath())
	}
	return nil, fmt.Errorf("unknown property backend %q", cfg.PropertyBackend)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	backend, err := openBackend(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize property backend: %v", err)
	}
	defer backend.Close()

	// Application Default Credentials
	ctx := context.Background()
	googleHTTP, err := google.DefaultClient(ctx, googleScopes...)
	if err != nil {
		log.Fatalf("Failed to create google client: %v", err)
	}
	googleClient, err := client.NewGoogleClient(ctx, cfg.SlidesAPIURL, cfg.DriveAPIURL, googleHTTP)
	if err != nil {
		log.Fatalf("Failed to create google api services: %v", err)
	}

	tinyURL := shortener.NewTinyURL(cfg.ShortenerEndpoint, &http.Client{Timeout: 10 * time.Second})

	slog.Info("starting autoslides", "version", config.Version, "backend", cfg.PropertyBackend, "public_url", cfg.PublicBaseURL)

	webServer := api.NewWebServer(cfg, backend, googleClient, googleClient, tinyURL)
	webServer.Start(cfg.ListenAddr)
}
