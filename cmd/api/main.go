package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/quickai/quickai-golang/internal/ai"
	"github.com/quickai/quickai-golang/internal/config"
	"github.com/quickai/quickai-golang/internal/database"
	"github.com/quickai/quickai-golang/internal/entitlement"
	"github.com/quickai/quickai-golang/internal/handlers"
	"github.com/quickai/quickai-golang/internal/ledger"
	"github.com/quickai/quickai-golang/internal/media"
	"github.com/quickai/quickai-golang/internal/routes"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	cfg := config.Load()

	// 1. --- Database Connection ---
	if cfg.DBDSN == "" {
		log.Fatal("CRITICAL ERROR: DB_DSN environment variable is not set.")
	}
	db, err := database.OpenDBWithDSN(cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 2. --- Schema Migration ---
	schema, err := os.ReadFile("schema.sql")
	if err != nil {
		log.Fatalf("Failed to read schema.sql: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}
	log.Println("Database schema verified")

	// 3. --- AI Service Initialization ---
	if cfg.GeminiAPIKey == "" {
		log.Fatal("CRITICAL ERROR: GEMINI_API_KEY environment variable is not set.")
	}
	aiService, err := ai.NewAIService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to initialize AI Service: %v", err)
	}
	defer aiService.Close()

	// 4. --- Media Pipeline Initialization ---
	mediaService, err := media.NewService(cfg.CloudinaryURL, cfg.ClipDropKey)
	if err != nil {
		log.Fatalf("Failed to initialize media service: %v", err)
	}

	// --- Application Setup ---
	// Inject ALL dependencies into the Handlers struct.
	app := &handlers.Handlers{
		DB:        db,
		AIService: aiService,
		Media:     mediaService,
		Ledger:    ledger.New(db),
		Resolver:  entitlement.NewResolver(entitlement.NewMySQLStore(db)),
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, cfg.CORSOrigin)

	// --- Start Server ---
	log.Printf("Starting QuickAI API server on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
