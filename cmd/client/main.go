package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticketcart/internal/cart"
	"ticketcart/internal/config"
	"ticketcart/internal/database"
	"ticketcart/internal/handlers"
	"ticketcart/internal/middleware"
	"ticketcart/internal/repositories"
	"ticketcart/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

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
		log.Printf("Marketplace API: %s", cfg.Marketplace.BaseURL)
	}

	cartStore := cart.NewStore(api, cfg.Checkout.EventTicketLimit)
	release := services.NewReleaseService(api, attempts)

	// An attempt persisted before the last shutdown means a checkout never
	// reconciled; give its reservation back before doing anything else.
	bootCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	release.ReleaseStale(bootCtx)
	cancel()

	checkout := services.NewCheckoutService(api, cartStore, attempts)
	reconciler := services.NewReconciler(api, cartStore, attempts, release, services.ReconcilerConfig{
		PollAttempts: cfg.Checkout.PollAttempts,
		PollInterval: cfg.Checkout.PollInterval,
	})

	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))

	r := chi.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	handlers.NewCheckoutHandler(cartStore, checkout, reconciler, release, sessionStore).Routes(r)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Ticket cart client listening on http://%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
