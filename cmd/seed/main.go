package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"formzen/internal/cache"
	"formzen/internal/config"
	"formzen/internal/domain/models"
	"formzen/internal/repository/postgres"
	"formzen/internal/service/forms"

	"github.com/joho/godotenv"
)

// demoUserID owns the seeded form
const demoUserID = "00000000-0000-0000-0000-000000000001"

// demoFormJSON is a model-shaped payload; it goes through the same parser
// as real generation output.
const demoFormJSON = "```json\n" + `{
  "formTitle": "Event Registration",
  "formFields": [
    {"label": "Full name", "name": "full_name", "placeholder": "Jane Doe", "inputTypes": ["text"]},
    {"label": "Email", "name": "email", "placeholder": "jane@example.com", "inputTypes": ["email"]},
    {"label": "Attendance date", "name": "attendance_date", "placeholder": "", "inputTypes": ["date"]},
    {"label": "Dietary notes", "name": "dietary_notes", "placeholder": "Anything we should know?", "inputTypes": ["textarea"]}
  ]
}` + "\n```"

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	clearData := flag.Bool("clear-data", false, "Clear all users, forms and submissions (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
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

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := postgres.DropAll(ctx, repoConfig); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	log.Printf("Ensuring schema (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	if err := postgres.Migrate(ctx, repoConfig); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		if err := postgres.ClearData(ctx, repoConfig); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Data cleared")
		return
	}

	userRepo := postgres.NewUserRepository(repoConfig)
	formService := forms.NewFormService(
		postgres.NewFormRepository(repoConfig),
		postgres.NewSubmissionRepository(repoConfig),
		cache.NewMemoryCache(0),
		logger,
	)

	email := "demo@formzen.dev"
	demo := &models.User{
		ID:           demoUserID,
		Name:         "Demo User",
		Email:        &email,
		Subscription: models.TierFree,
	}
	if err := userRepo.UpsertNamed(ctx, demo); err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}

	content, err := forms.ParseFormContent(demoFormJSON)
	if err != nil {
		log.Fatalf("Demo form does not parse: %v", err)
	}

	form, err := formService.Create(ctx, demo, *content)
	if err != nil {
		log.Fatalf("Failed to create demo form: %v", err)
	}
	form, err = formService.Publish(ctx, form.ID, demo)
	if err != nil {
		log.Fatalf("Failed to publish demo form: %v", err)
	}

	log.Printf("Seeded user %s and published form %d (share token %s)", demo.ID, form.ID, *form.ShareToken)
}
