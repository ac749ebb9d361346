package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"equipcert/internal/api"
	"equipcert/internal/checklist"
	"equipcert/internal/config"
	"equipcert/internal/database"
	"equipcert/internal/identify"
	"equipcert/internal/monitoring"
	"equipcert/internal/storage"
	"equipcert/internal/submission"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	// Initialize context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	// Initialize database
	if err := database.InitDB(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize identification model
	model, err := identify.NewModel(cfg.AI)
	if err != nil {
		log.Fatalf("Failed to initialize identification model: %v", err)
	}
	identifier := identify.NewIdentifier(model, cfg.AI.Timeout())

	// Initialize photo storage
	photos, err := storage.NewPhotoStore(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize photo storage: %v", err)
	}
	bucketCtx, bucketCancel := context.WithTimeout(ctx, cfg.Storage.Timeout())
	if err := photos.EnsureBucket(bucketCtx); err != nil {
		log.Fatalf("Failed to prepare photo bucket: %v", err)
	}
	bucketCancel()

	// Initialize checklist provider and submission service
	checklists := checklist.NewProvider(cfg.CMS.BaseURL, cfg.CMS.AccessToken, cfg.CMS.Timeout())
	repo := database.NewInspectionRepo(database.GetDB())
	submissions := submission.NewService(photos, repo)

	// Initialize API server
	monitor := monitoring.NewMonitor()
	server := api.NewServer(identifier, checklists, submissions, repo, monitor)
	if cfg.Auth.Enabled {
		server.EnableAuth(cfg.Auth.JWTSecret)
	}

	// Start metrics server
	go startMetricsServer(cfg.Server.MetricsPort)

	// Start API server
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}

		cancel() // Cancel main context
	}()

	// Start server
	log.Printf("Starting API server on port %d", cfg.Server.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func startMetricsServer(port int) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
