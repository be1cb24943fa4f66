package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"subtrack/internal/caching"
	"subtrack/internal/config"
	"subtrack/internal/handlers"
	"subtrack/internal/jobs"
	"subtrack/internal/jobs/background"
	"subtrack/internal/middleware"
	"subtrack/internal/repositories"
	"subtrack/internal/services"
	"subtrack/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	if err := database.RunMigrations(context.Background(), databaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379" // Default Redis address
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0 // Default DB
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// Reminder engine configuration (trigger time, timezone, SMTP)
	reminderCfg, err := config.LoadReminderConfig(os.Getenv("REMINDER_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load reminder config: %v", err)
	}
	reminderLocation, err := reminderCfg.Trigger.Location()
	if err != nil {
		log.Fatalf("Invalid reminder timezone: %v", err)
	}

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create repositories
	subscriptionRepo := repositories.NewSubscriptionRepo(pool)
	preferenceRepo := repositories.NewPreferenceRepo(pool)
	userRepo := repositories.NewUserRepo(pool)

	// Create services
	subscriptionSvc := services.NewSubscriptionService(subscriptionRepo, cacheSvc)
	preferenceSvc := services.NewPreferenceService(preferenceRepo)
	accountSvc := services.NewAccountService(subscriptionSvc, preferenceSvc)

	var mailer services.Mailer
	if reminderCfg.SMTP.Host != "" {
		mailer, err = services.NewSMTPMailer(reminderCfg.SMTP)
		if err != nil {
			log.Fatalf("Failed to initialize SMTP mailer: %v", err)
		}
	} else {
		log.Printf("WARNING: No SMTP host configured, reminder emails will only be logged")
		mailer = services.NewLogMailer()
	}

	// Reminder engine: daily batch firing at the configured wall-clock time
	reminderSvc := jobs.NewRenewalReminderService(subscriptionRepo, userRepo, mailer, reminderLocation)
	jobScheduler, err := background.NewJobScheduler(reminderSvc, reminderCfg.Trigger)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	jobScheduler.Start()

	// Create handlers
	subscriptionHandlers := handlers.NewSubscriptionHandlers(subscriptionSvc, preferenceSvc)
	settingsHandlers := handlers.NewSettingsHandlers(preferenceSvc, accountSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoint (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)

	// Protected API routes
	api := e.Group("/api")
	api.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret)))
	api.Use(middleware.OwnerContext())

	api.POST("/subscriptions", subscriptionHandlers.CreateSubscription)
	api.GET("/subscriptions", subscriptionHandlers.ListSubscriptions)
	api.GET("/subscriptions/upcoming", subscriptionHandlers.UpcomingRenewals)
	api.GET("/subscriptions/:id", subscriptionHandlers.GetSubscription)
	api.PUT("/subscriptions/:id", subscriptionHandlers.UpdateSubscription)
	api.DELETE("/subscriptions/:id", subscriptionHandlers.DeleteSubscription)
	api.DELETE("/subscriptions", subscriptionHandlers.DeleteAllSubscriptions)

	api.GET("/settings/reminders", settingsHandlers.GetReminderSettings)
	api.PUT("/settings/reminders", settingsHandlers.UpdateReminderSettings)
	api.DELETE("/account", settingsHandlers.DeleteAccountData)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "5000"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	go func() {
		log.Printf("Subtrack server v%s starting on port %d", version, port)
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for termination signal, then stop scheduler and server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("Shutdown signal received")
	if err := jobScheduler.Stop(); err != nil {
		log.Printf("Failed to stop job scheduler: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Printf("Server stopped")
}
