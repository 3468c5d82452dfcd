package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"designgen-backend/internal/config"
	"designgen-backend/internal/database"
	"designgen-backend/internal/handlers"
	"designgen-backend/internal/middleware"
	"designgen-backend/internal/services"
	"designgen-backend/internal/store"
	"designgen-backend/internal/supabase"
	"designgen-backend/internal/v0"
	"designgen-backend/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize v0 client
	providerClient := v0.NewClient(cfg.V0APIBaseURL, cfg.V0APIKey)

	// Record store: Postgres when configured, in-memory otherwise
	var recordStore store.RecordStore
	if cfg.DatabaseURL != "" {
		migrator, err := database.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize migrator: %v", err)
		}
		if err := migrator.Run(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		migrator.Close()
		log.Println("Migrations completed successfully")

		pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize record store: %v", err)
		}
		defer pgStore.Close()
		recordStore = pgStore
	} else {
		log.Println("Warning: DATABASE_URL not set. Using in-memory record store.")
		log.Println("Records will not survive a restart; set DATABASE_URL for durable storage.")
		recordStore = store.NewMemoryStore()
	}

	// Supabase clients are optional; without them terminal-state archival and
	// realtime events are skipped.
	var archiveService *services.ArchiveService
	if cfg.SupabaseURL != "" {
		supabaseClient, err := supabase.NewClient(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Supabase client: %v", err)
		}

		storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
		if err != nil {
			log.Fatalf("Failed to initialize storage client: %v", err)
		}

		realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)
		archiveService = services.NewArchiveService(storageClient, realtimeClient)
	} else {
		log.Println("Warning: SUPABASE_URL not set. Artifact archival and realtime events disabled.")
	}

	timeouts := workflow.Timeouts{
		Ensure: cfg.ProviderEnsureTimeout,
		Submit: cfg.ProviderSubmitTimeout,
		Status: cfg.ProviderStatusTimeout,
	}

	var notifier workflow.Notifier
	if archiveService != nil {
		notifier = archiveService
	}
	controller := workflow.NewController(providerClient, recordStore, timeouts, notifier)

	generationsHandler := handlers.NewGenerationsHandler(controller)

	// Setup router
	router := gin.Default()

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.POST("/generations/:subject_id", generationsHandler.Submit)
	api.POST("/generations/:subject_id/refresh", generationsHandler.Refresh)
	api.GET("/generations/:subject_id", generationsHandler.Get)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
