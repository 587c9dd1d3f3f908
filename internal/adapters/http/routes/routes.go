package routes

import (
	"time"

	"svco-apply/internal/adapters/gateway"
	"svco-apply/internal/adapters/http/handlers"
	"svco-apply/internal/adapters/persistence/repositories"
	"svco-apply/internal/config"
	"svco-apply/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application. It returns the payment
// reconciliation poller so main can tie its lifecycle to the server's.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.PaymentPollService {
	// Initialize repositories
	stageRepo := repositories.NewStageRepository(db)
	batchRepo := repositories.NewBatchRepository(db)
	universityRepo := repositories.NewUniversityRepository(db)
	applicantRepo := repositories.NewApplicantRepository(db)
	applicationRepo := repositories.NewApplicationRepository(db)
	transitionRepo := repositories.NewTransitionRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)

	// Outbound adapters
	instamojoClient := gateway.NewInstamojoClient(gateway.InstamojoConfig{
		BaseURL:   cfg.Gateway.BaseURL,
		APIKey:    cfg.Gateway.APIKey,
		AuthToken: cfg.Gateway.AuthToken,
		Purpose:   cfg.Gateway.Purpose,
	})
	notifyService := services.NewNotificationService(cfg.Notify.WebhookURL)

	// Initialize services
	feeService := services.NewFeeService(services.FeeTable{
		Base:          cfg.Fee.Base,
		Increment:     cfg.Fee.Increment,
		MaxCofounders: cfg.Fee.MaxCofounders,
	})
	tokenService := services.NewTokenService(applicantRepo)
	stageService := services.NewStageService(stageRepo, applicationRepo, paymentRepo, transitionRepo)
	paymentService := services.NewPaymentService(
		paymentRepo,
		applicationRepo,
		feeService,
		stageService,
		instamojoClient,
		notifyService,
	)
	applicationService := services.NewApplicationService(
		batchRepo,
		stageRepo,
		universityRepo,
		applicantRepo,
		applicationRepo,
		transitionRepo,
		paymentRepo,
		tokenService,
		feeService,
		paymentService,
		notifyService,
	)
	pollService := services.NewPaymentPollService(
		paymentRepo,
		paymentService,
		instamojoClient,
		cfg.Poll.Schedule,
		time.Duration(cfg.Poll.StaleAfterMins)*time.Minute,
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	batchHandler := handlers.NewBatchHandler(applicationService)
	masterHandler := handlers.NewMasterHandler(universityRepo)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Master data
	apiV1.Get("/universities", masterHandler.ListUniversities)

	// Applications
	applications := apiV1.Group("/applications")
	applications.Post("/", applicationHandler.StartApplication)
	applications.Get("/resume", applicationHandler.ResumeApplication)
	applications.Patch("/:id/team", applicationHandler.SetTeamSize)
	applications.Post("/:id/cofounders", applicationHandler.AddCofounder)
	applications.Delete("/:id/cofounders/:cofounderId", applicationHandler.RemoveCofounder)
	applications.Post("/:id/payments", applicationHandler.RequestPayment)

	// Payments (gateway-facing)
	payments := apiV1.Group("/payments")
	payments.Post("/webhook", paymentHandler.Webhook)

	// Batches (reporting)
	batches := apiV1.Group("/batches")
	batches.Get("/:id/stats", batchHandler.GetStats)
	batches.Get("/:id/applications", batchHandler.ListApplications)

	return pollService
}
