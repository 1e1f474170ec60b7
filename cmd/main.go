package main

import (
	"context"

	"crm-service/internal/handler"
	"crm-service/internal/middleware"
	"crm-service/internal/notify"
	"crm-service/internal/repository"
	"crm-service/internal/usecase"
	"crm-service/pkg/config"
	"crm-service/pkg/database"
	"crm-service/pkg/jwtutil"
	"crm-service/pkg/logger"
	"crm-service/pkg/mail"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting CRM service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Connect to RabbitMQ and declare the notification topology
	rabbit, err := notify.NewRabbitMQ(&cfg.AMQP)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer rabbit.Close()
	log.Info("RabbitMQ connection established")

	producer := notify.NewProducer(rabbit.Ch)
	mailer := mail.NewMailer(&cfg.SMTP)

	// Repositories and usecases
	db := database.GetDB()
	leadRepo := repository.NewLeadRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	agentRepo := repository.NewAgentRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	lifecycle := usecase.NewLeadLifecycle(leadRepo, categoryRepo, agentRepo, producer, log)
	dashboard := usecase.NewDashboard(leadRepo)

	// Drain the notification queue into SMTP in the background
	worker := notify.NewWorker(rabbit.Ch, mailer, profileRepo, log)
	go func() {
		if err := worker.Start(context.Background()); err != nil {
			log.Error("Notification worker stopped", zap.Error(err))
		}
	}()
	log.Info("Notification worker started")

	// Handlers
	authHandler := handler.NewAuthHandler(producer)
	leadHandler := handler.NewLeadHandler(lifecycle, cfg.Media.Dir)
	followUpHandler := handler.NewFollowUpHandler(cfg.Media.Dir)
	agentHandler := handler.NewAgentHandler(producer)
	dashboardHandler := handler.NewDashboardHandler(dashboard)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(middleware.MetricsMiddleware)

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Legacy export feed kept public for the reporting integration.
	e.GET("/leads/json", leadHandler.ExportJSON)

	// Authentication routes - these don't belong under /api since they're for getting access to the API
	auth := e.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/reset-password", authHandler.RequestPasswordReset)
	auth.GET("/reset-password/confirm", authHandler.ConfirmPasswordReset)
	auth.POST("/reset-password/complete", authHandler.CompletePasswordReset)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Lead management
	leads := api.Group("/leads")
	leads.GET("", leadHandler.List)
	leads.GET("/:id", leadHandler.Get)
	leads.POST("", leadHandler.Create, middleware.RequireOrganizer)
	leads.PUT("/:id", leadHandler.Update, middleware.RequireOrganizer)
	leads.DELETE("/:id", leadHandler.Delete, middleware.RequireOrganizer)
	leads.POST("/:id/assign-agent", leadHandler.AssignAgent, middleware.RequireOrganizer)
	leads.POST("/:id/picture", leadHandler.UploadPicture, middleware.RequireOrganizer)
	leads.POST("/:id/category", leadHandler.UpdateCategory)
	leads.POST("/:id/followups", followUpHandler.Create)

	// Follow-up management
	followups := api.Group("/followups")
	followups.PUT("/:id", followUpHandler.Update)
	followups.DELETE("/:id", followUpHandler.Delete, middleware.RequireOrganizer)

	// Category management
	categories := api.Group("/categories")
	categories.GET("", handler.ListCategories)
	categories.GET("/:id", handler.GetCategory)
	categories.POST("", handler.CreateCategory, middleware.RequireOrganizer)
	categories.PUT("/:id", handler.UpdateCategory, middleware.RequireOrganizer)
	categories.DELETE("/:id", handler.DeleteCategory, middleware.RequireOrganizer)

	// Agent management - organizers only
	agents := api.Group("/agents")
	agents.Use(middleware.RequireOrganizer)
	agents.GET("", agentHandler.List)
	agents.GET("/:id", agentHandler.Get)
	agents.POST("", agentHandler.Create)
	agents.PUT("/:id", agentHandler.Update)
	agents.DELETE("/:id", agentHandler.Delete)

	// Dashboard - organizers only
	api.GET("/dashboard", dashboardHandler.Stats, middleware.RequireOrganizer)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
