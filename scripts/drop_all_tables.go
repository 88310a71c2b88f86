package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"blockwriter/internal/config"
	"blockwriter/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL (or SUPABASE_DB_URL) environment variable is required")
	}
	if cfg.IsProduction() {
		log.Fatal("refusing to drop production tables")
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.DropSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	fmt.Printf("All tables dropped successfully (prefix: %s)\n", cfg.TablePrefix)
}
