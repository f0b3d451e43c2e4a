package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dropzone/internal/config"
	"dropzone/internal/filetypes"
	"dropzone/internal/handler"
	"dropzone/internal/handler/sse"
	"dropzone/internal/middleware"
	"dropzone/internal/repository"
	"dropzone/internal/repository/postgres"
	"dropzone/internal/seed"
	"dropzone/internal/service/drive"
	"dropzone/internal/utils"

	mstream "github.com/haowjy/meridian-stream-go"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage", cfg.StorageBackend,
	)

	ctx := context.Background()

	// Open storage backend
	storage, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer storage.Close()

	if storage.Postgres != nil {
		if err := postgres.EnsureSchema(ctx, storage.Postgres); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
	}

	// The memory backend starts empty unless seed files are configured
	if cfg.StorageBackend == config.StorageMemory && (cfg.SeedFoldersPath != "" || cfg.SeedFilesPath != "") {
		data, err := seed.LoadFiles(cfg.SeedFoldersPath, cfg.SeedFilesPath)
		if err != nil {
			log.Fatalf("Failed to load seed data: %v", err)
		}
		if err := seed.Apply(ctx, data, storage.Folders, storage.Files, storage.TxManager, logger); err != nil {
			log.Fatalf("Failed to apply seed data: %v", err)
		}
	}

	// Upload acceptance policy
	registry, err := filetypes.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize file type registry: %v", err)
	}
	logger.Info("file type registry initialized",
		"categories", len(registry.Categories()),
		"max_size", registry.MaxSize(),
	)

	// Create mstream registry (upload sessions are served over SSE)
	streamRegistry := mstream.NewRegistry()

	// Start cleanup goroutine for finished streams
	go streamRegistry.StartCleanup(context.Background())

	// Create services
	ids := utils.NewIDGenerator()
	uploadService := drive.NewUploadService(
		storage.Files,
		storage.Folders,
		storage.Sessions,
		storage.TxManager,
		registry,
		streamRegistry,
		ids,
		drive.UploadConfig{
			StepInterval:     cfg.UploadStepInterval,
			SessionRetention: cfg.UploadSessionRetention,
			EventIDs:         cfg.Debug,
		},
		logger,
	)
	folderService := drive.NewFolderService(storage.Folders, storage.Files, storage.TxManager, ids, logger)
	fileService := drive.NewFileService(storage.Files, storage.Folders, storage.TxManager, uploadService, ids, logger)
	treeService := drive.NewTreeService(storage.Folders, storage.Files, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Handlers{
		Folder: handler.NewFolderHandler(folderService, logger),
		File:   handler.NewFileHandler(fileService, logger),
		Tree:   handler.NewTreeHandler(treeService, logger),
		Upload: handler.NewUploadHandler(uploadService, streamRegistry, sse.DefaultConfig(), logger),
	})

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLogger → Recovery → Routes
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Last-Event-ID", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	// Run the server until SIGINT/SIGTERM, then drain uploads and connections
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Stop running uploads first so open SSE streams receive their final event
		if err := uploadService.Shutdown(shutdownCtx); err != nil {
			logger.Warn("upload shutdown incomplete", "error", err)
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	logger.Info("server stopped")
}
