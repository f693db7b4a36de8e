package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/AndersonTREL/TREL-MDM/compliance"
	"github.com/AndersonTREL/TREL-MDM/config"
	"github.com/AndersonTREL/TREL-MDM/database"
	"github.com/AndersonTREL/TREL-MDM/handlers"
	"github.com/AndersonTREL/TREL-MDM/jobs"
	"github.com/AndersonTREL/TREL-MDM/middleware"
	"github.com/AndersonTREL/TREL-MDM/notify"
	"github.com/AndersonTREL/TREL-MDM/routes"
	"github.com/AndersonTREL/TREL-MDM/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it")
	}

	config.LoadConfig()

	// Database connection
	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.EnsureIndexes(); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Compliance rules: built-in checklist unless a YAML override is set.
	rules := compliance.DefaultRules()
	if config.ComplianceRulesPath != "" {
		loaded, err := compliance.LoadRules(config.ComplianceRulesPath)
		if err != nil {
			log.Fatalf("Failed to load compliance rules: %v", err)
		}
		rules = loaded
		log.Printf("Loaded compliance rules from %s", config.ComplianceRulesPath)
	}

	// No email/SMS providers configured yet; the log stubs are the default.
	notifier := notify.NewService(database.DB(), nil, nil)

	if err := handlers.InitCollections(rules, notifier); err != nil {
		log.Fatalf("Failed to initialize handlers: %v", err)
	}

	go websocket.GetHub().Run()

	// Background expiry sweep
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweeper := jobs.NewExpirySweeper(database.DB(), notifier, config.ExpirySweepInterval)
	go sweeper.Run(sweepCtx)

	// Router setup
	router := mux.NewRouter()
	routes.RegisterRoutes(router)

	// Global middlewares (order matters!)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.CorsMiddleware)

	// HTTP server configuration
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("TREL-MDM backend running on http://localhost:%s", config.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	<-quit
	log.Println("Shutting down server...")

	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	database.Disconnect()
	log.Println("Server stopped gracefully")
}
