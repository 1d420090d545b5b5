// cmd/seeder/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ampplex/influencerflow/internal/config"
	"github.com/ampplex/influencerflow/internal/db"
	"github.com/ampplex/influencerflow/internal/logging"
)

func main() {
	log := logging.Get()

	cfg, _, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	seedFiles := []string{
		"seed/brands.sql",
		"seed/influencers.sql",
	}

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			log.Fatalf("failed to read %s: %v", file, err)
		}

		if _, err := conn.ExecContext(ctx, string(content)); err != nil {
			log.Fatalf("failed to execute %s: %v", file, err)
		}
		fmt.Printf("Seeded: %s\n", file)
	}

	fmt.Println("Database seeding completed successfully!")
}
