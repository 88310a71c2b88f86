package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blockwriter/internal/auth"
	"blockwriter/internal/blocks"
	"blockwriter/internal/config"
	"blockwriter/internal/handler"
	"blockwriter/internal/middleware"
	"blockwriter/internal/repository/postgres"
	"blockwriter/internal/service"
	serviceAuth "blockwriter/internal/service/auth"
	serviceLLM "blockwriter/internal/service/llm"
	"blockwriter/internal/service/llm/gemini"
	"blockwriter/internal/service/llm/prompts"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// JWT verifier backed by the identity provider's JWKS
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if cfg.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		logger.Info("schema ensured", "prefix", cfg.TablePrefix)
	}

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	templateRepo := postgres.NewTemplateRepository(repoConfig)
	experienceRepo := postgres.NewExperienceRepository(repoConfig)
	profileRepo := postgres.NewProfileRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Services
	catalog := blocks.Default()
	authorizer := serviceAuth.NewOwnerBasedAuthorizer(folderRepo)
	templateService := service.NewTemplateService(templateRepo, logger)
	docService := service.NewDocumentService(docRepo, templateService, authorizer, txManager, blocks.DefaultAllocator(), logger)
	folderService := service.NewFolderService(folderRepo, docRepo, txManager, logger)
	experienceService := service.NewExperienceService(experienceRepo, logger)
	profileService := service.NewProfileService(profileRepo, logger)

	geminiClient := gemini.NewClient(gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	}, logger)
	if !geminiClient.Configured() {
		logger.Warn("GEMINI_API_KEY not set; AI endpoints will return CONFIG_ERROR")
	}
	writingService := serviceLLM.NewWritingService(geminiClient, experienceRepo, prompts.NewBuilder(catalog), logger)

	// Routes
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Handlers{
		AI:          handler.NewAIHandler(writingService, logger),
		Documents:   handler.NewDocumentHandler(docService, logger),
		Folders:     handler.NewFolderHandler(folderService, logger),
		Templates:   handler.NewTemplateHandler(templateService, logger),
		Experiences: handler.NewExperienceHandler(experienceService, logger),
		Profile:     handler.NewProfileHandler(profileService, logger),
	})

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → RequestLogger → Routes
	var h http.Handler = mux
	h = middleware.RequestLogger(logger)(h)
	h = middleware.AuthMiddleware(jwtVerifier, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Generation calls may retry once after model discovery, so writes get a generous bound
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
