package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dailycoach/internal/config"
	"dailycoach/internal/database"
	"dailycoach/internal/handlers"
	"dailycoach/internal/repository"
	"dailycoach/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	activityRepo := repository.NewActivityRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	resultRepo := repository.NewResultRepository(db)

	// Seed starter content on an empty catalog
	if cfg.SeedContent {
		if err := service.SeedStarterContent(activityRepo); err != nil {
			log.Printf("Warning: Failed to seed starter content: %v", err)
		}
	}

	// Initialize services and handlers
	practiceService := service.NewPracticeService(activityRepo, progressRepo, resultRepo)
	middleware := handlers.NewMiddleware(cfg.JWTSecret)
	practiceHandler := handlers.NewPracticeHandler(practiceService, middleware)

	// Setup routes
	mux := http.NewServeMux()
	practiceHandler.RegisterRoutes(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
