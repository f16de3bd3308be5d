package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hackx/backend/internal/cache"
	"github.com/hackx/backend/internal/data"
	"github.com/hackx/backend/internal/handler"
	"github.com/hackx/backend/internal/infrastructure"
	"github.com/hackx/backend/internal/middleware"
	"github.com/hackx/backend/internal/repository"
	"github.com/hackx/backend/internal/service"
)

func main() {
	// Load configuration
	config := infrastructure.LoadConfig()

	// Initialize logger
	logger, err := infrastructure.NewLogger(config.Server.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.SyncLogger(logger)

	logger.Info("Starting HackX API",
		zap.String("environment", config.Server.Environment),
		zap.Int("port", config.Server.Port),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize telemetry
	telemetry, err := infrastructure.NewTelemetry(ctx, &config.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		telemetry.Shutdown(shutdownCtx)
	}()

	metrics, err := telemetry.CreateMetrics()
	if err != nil {
		logger.Error("Failed to create metrics", zap.Error(err))
		os.Exit(1)
	}

	// Initialize database
	database, err := infrastructure.NewDatabase(&config.Database, logger)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer database.Close()

	if err := database.AutoMigrate(); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		os.Exit(1)
	}

	// Redis is optional; without it status reads go straight to Postgres
	redisClient, err := infrastructure.NewRedisClient(ctx, &config.Redis, logger)
	if err != nil {
		logger.Error("Failed to connect to redis", zap.Error(err))
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	timelines := cache.NewTimelineCache(redisClient, config.Redis.TimelineTTL)

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	hackathonRepo := repository.NewHackathonRepository(database.DB)
	registrationRepo := repository.NewRegistrationRepository(database.DB)
	projectRepo := repository.NewProjectRepository(database.DB)
	scoreRepo := repository.NewScoreRepository(database.DB)

	if config.Seed.DemoData {
		seeder := data.NewSeeder(hackathonRepo, userRepo, logger)
		if err := seeder.SeedDemoHackathons(ctx, &config.Seed); err != nil {
			logger.Error("Failed to seed demo hackathons", zap.Error(err))
			os.Exit(1)
		}
	}

	// Initialize services
	userService := service.NewUserService(userRepo, &config.JWT, telemetry.Tracer, logger)
	hackathonService := service.NewHackathonService(hackathonRepo, userRepo, timelines, metrics, telemetry.Tracer, logger)
	participationService := service.NewParticipationService(hackathonRepo, registrationRepo, projectRepo, scoreRepo, metrics, telemetry.Tracer, logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService, participationService)
	hackathonHandler := handler.NewHackathonHandler(hackathonService)
	participationHandler := handler.NewParticipationHandler(participationService)

	// Setup Gin router
	if config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		if len(config.Server.AllowedOrigins) == 0 {
			logger.Warn("CORS_ALLOWED_ORIGINS is empty, only local dev origins are allowed")
		}
	}

	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware(middleware.NewCORSConfig(config.Server.AllowedOrigins)))
	router.Use(middleware.TracingMiddleware(telemetry.Tracer))
	router.Use(middleware.MetricsMiddleware(metrics))

	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": config.Telemetry.ServiceVersion,
		})
	})

	// Metrics endpoint for Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		// Public hackathon pages, including the status endpoint polled by countdowns
		hackathons := api.Group("/hackathons")
		{
			hackathons.GET("", hackathonHandler.ListHackathons)
			hackathons.GET("/:id", hackathonHandler.GetHackathon)
			hackathons.GET("/:id/status", hackathonHandler.GetStatus)
			hackathons.GET("/:id/participants", participationHandler.ParticipantCount)
			hackathons.GET("/:id/projects", participationHandler.ListProjects)
			hackathons.GET("/:id/leaderboard", participationHandler.Leaderboard)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(userService))
		{
			users := protected.Group("/users")
			{
				users.GET("/me", userHandler.GetCurrentUser)
				users.GET("/me/registrations", userHandler.GetMyRegistrations)
			}

			manage := protected.Group("/hackathons")
			{
				manage.POST("", hackathonHandler.CreateHackathon)
				manage.PUT("/:id/timeline", hackathonHandler.UpdateTimeline)
				manage.DELETE("/:id", hackathonHandler.DeleteHackathon)
				manage.POST("/:id/judges", hackathonHandler.AddJudge)
				manage.POST("/:id/registration", participationHandler.Register)
				manage.DELETE("/:id/registration", participationHandler.Unregister)
				manage.POST("/:id/projects", participationHandler.SubmitProject)
				manage.POST("/:id/projects/:projectId/score", participationHandler.ScoreProject)
			}
		}
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server starting",
			zap.String("address", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
