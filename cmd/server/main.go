package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"svco-apply/internal/adapters/http/middleware"
	"svco-apply/internal/adapters/http/routes"
	"svco-apply/internal/adapters/persistence/models"
	"svco-apply/internal/config"

	"github.com/gofiber/fiber/v2"

	_ "svco-apply/docs" // Swagger docs
)

// @title SV.CO Admissions API
// @version 1.0
// @description Startup admission applications and fee payments for SV.CO batches
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email help@sv.co

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host apply.sv.co
// @BasePath /api/v1
// @schemes https

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("failed to auto migrate: %v", err)
	}
	log.Println("database migration completed")

	// Seed application stages and universities
	if err := config.SeedMasterData(db); err != nil {
		log.Printf("warning: failed to seed master data: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "SV.CO Admissions API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	pollService := routes.Setup(app, db, cfg)

	// Start the payment reconciliation poller; webhooks can be lost, the
	// poller is the catch-up path.
	if err := pollService.Start(); err != nil {
		log.Fatalf("failed to start payment poller: %v", err)
	}
	defer pollService.Stop()

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	log.Println("server stopped gracefully")
}
