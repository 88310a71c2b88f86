package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"blockwriter/internal/auth"
	"blockwriter/internal/blocks"
	"blockwriter/internal/config"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/repository/postgres"
	"blockwriter/internal/seed"
	"blockwriter/internal/service"
	serviceAuth "blockwriter/internal/service/auth"

	"github.com/joho/godotenv"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	clearData := flag.Bool("clear-data", false, "Clear the demo user's data (keep schema)")
	email := flag.String("email", "demo@example.com", "Demo account email")
	password := flag.String("password", "demo-password", "Demo account password (used when the account is created)")
	userID := flag.String("user-id", "", "Seed for this user id instead of provisioning an account")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.IsProduction() && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: cannot run destructive operations (--drop-tables or --clear-data) in production")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	logger.Info("seeding", "environment", cfg.Environment, "prefix", cfg.TablePrefix)

	if *dropTables {
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		logger.Info("tables dropped")
	}

	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	logger.Info("schema ready")

	if *schemaOnly {
		return
	}

	identity := models.Identity{UserID: *userID, Email: *email, Name: "デモ ユーザー"}
	if identity.UserID == "" {
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			log.Fatalf("SUPABASE_URL and SUPABASE_KEY are required to provision the demo account (or pass -user-id)")
		}
		admin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)
		identity.UserID, err = admin.EnsureUser(ctx, *email, *password, identity.Name)
		if err != nil {
			log.Fatalf("Failed to provision demo account: %v", err)
		}
		logger.Info("demo account ready", "email", *email, "user_id", identity.UserID)
	}

	if err := postgres.ClearUserData(ctx, pool, tables, identity.UserID); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	if *clearData {
		logger.Info("data cleared", "user_id", identity.UserID)
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	experienceRepo := postgres.NewExperienceRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	templateService := service.NewTemplateService(postgres.NewTemplateRepository(repoConfig), logger)
	authorizer := serviceAuth.NewOwnerBasedAuthorizer(folderRepo)
	seeder := seed.NewSeeder(
		service.NewDocumentService(docRepo, templateService, authorizer, txManager, blocks.DefaultAllocator(), logger),
		service.NewFolderService(folderRepo, docRepo, txManager, logger),
		service.NewExperienceService(experienceRepo, logger),
		service.NewProfileService(postgres.NewProfileRepository(repoConfig), logger),
		experienceRepo,
		logger,
	)

	result, err := seeder.Seed(ctx, identity)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	logger.Info("seeding complete", "document_id", result.DocumentID, "folder_id", result.FolderID)
}
