package main

import (
	"context"
	"log"
	"time"

	"ticketcart/internal/config"
	"ticketcart/internal/database"
	"ticketcart/internal/repositories"
	"ticketcart/internal/services"
)

// Releases any checkout attempt left behind by a crashed or interrupted run.
// Useful when the client binary cannot be restarted but the reservation
// should go back to inventory now instead of waiting for the backend TTL.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(database.Config{Path: cfg.Storage.Path})
	if err != nil {
		log.Fatalf("Failed to open local storage: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	attempts := repositories.NewAttemptRepository(db)

	var api services.MarketplaceAPI
	if cfg.Marketplace.UseMock || cfg.Marketplace.APIKey == "" {
		api = services.NewMockMarketplace()
	} else {
		api = services.NewMarketplaceClient(services.MarketplaceConfig{
			BaseURL: cfg.Marketplace.BaseURL,
			APIKey:  cfg.Marketplace.APIKey,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	has, err := attempts.HasAttempt(ctx)
	if err != nil {
		log.Fatalf("Failed to check for a pending attempt: %v", err)
	}
	if !has {
		log.Println("No pending checkout attempt found")
		return
	}

	release := services.NewReleaseService(api, attempts)
	if err := release.Release(ctx); err != nil {
		log.Fatalf("Release failed: %v", err)
	}
	log.Println("Pending reservation released")
}
