package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"cartograph/internal/auth"
	"cartograph/internal/config"
	docsysRepo "cartograph/internal/domain/repositories/docsystem"
	"cartograph/internal/handler"
	"cartograph/internal/handler/sse"
	"cartograph/internal/metrics"
	"cartograph/internal/middleware"
	fileRepo "cartograph/internal/repository/file"
	"cartograph/internal/repository/postgres"
	postgresDocsys "cartograph/internal/repository/postgres/docsystem"
	serviceExplorer "cartograph/internal/service/explorer"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, closeLog, err := config.NewLogger(cfg.Environment, cfg.LogDir, cfg.LogMaxFiles)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"node_source", cfg.NodeSource,
		"table_prefix", cfg.TablePrefix,
	)

	explorerCfg, err := config.LoadExplorerConfig(cfg.ExplorerConfigPath)
	if err != nil {
		log.Fatalf("Failed to load explorer config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Auth is optional in dev: without SUPABASE_URL every request runs as DEV_USER_ID
	var jwtVerifier auth.JWTVerifier
	if cfg.SupabaseJWKSURL != "" {
		v, err := auth.NewJWTVerifier(ctx, cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer v.Close()
		jwtVerifier = v
	} else {
		logger.Warn("authentication disabled, requests run as dev user", "user_id", cfg.DevUserID)
	}

	// Node source
	var (
		nodeRepo docsysRepo.NodeRepository
		watcher  *fileRepo.Watcher
	)
	switch cfg.NodeSource {
	case config.NodeSourcePostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()
		logger.Info("database connected")

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		nodeRepo = postgresDocsys.NewNodeRepository(repoConfig, postgres.NewSnapshotTransactionManager(pool, logger))

	case config.NodeSourceFile:
		repo := fileRepo.NewNodeRepository(cfg.NodesDir, logger)
		nodeRepo = repo
		logger.Info("serving projects from files", "dir", repo.Dir())
	}

	// Metrics
	metrics.RegisterHTTPMetrics()
	metrics.RegisterExplorerMetrics()

	viewService := serviceExplorer.NewViewService(nodeRepo, explorerCfg, logger,
		serviceExplorer.WithTTL(cfg.ViewTTL),
		serviceExplorer.WithViewObserver(metrics.ExplorerObserver{}),
	)
	go viewService.Run(ctx)

	if cfg.NodeSource == config.NodeSourceFile {
		watcher = fileRepo.NewWatcher(cfg.NodesDir, logger, viewService.ReloadProject)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("project file watcher stopped", "error", err)
			}
		}()
	}

	explorerHandler := handler.NewExplorerHandler(viewService, logger)
	streamHandler := handler.NewStreamHandler(viewService, sse.DefaultConfig(), logger)
	healthHandler := handler.NewHealthHandler(viewService, cfg.NodeSource)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())
	handler.RegisterExplorerRoutes(mux, explorerHandler, streamHandler)

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Metrics → Logging → Recovery → Auth → Routes
	var h http.Handler = metrics.Routes(mux)
	h = middleware.AuthMiddleware(jwtVerifier, cfg.DevUserID, logger)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)
	h = metrics.Middleware(h)

	// CORS - must be outermost to answer OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
