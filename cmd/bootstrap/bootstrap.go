package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"health-program-api/config"
	deliveryHttp "health-program-api/internal/delivery/http"
	"health-program-api/internal/delivery/http/handler"
	"health-program-api/internal/delivery/http/middleware"
	"health-program-api/internal/event"
	"health-program-api/internal/infrastructure/cache"
	"health-program-api/internal/infrastructure/database"
	"health-program-api/internal/infrastructure/mailer"
	"health-program-api/internal/repository"
	"health-program-api/internal/service"
	"health-program-api/internal/usecase"
	"health-program-api/pkg/jwt"
	"health-program-api/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Bus         event.Bus
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()
	log := logrus.StandardLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	if cfg.DB.RunMigrations {
		if err := database.RunMigrations(db); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Database migrations applied")
	}

	// Initialize Redis
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	// Initialize event bus and the notification dispatcher
	bus, err := newEventBus(cfg, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to start event bus: %w", err)
	}
	app.Bus = bus

	mail, err := mailer.New(cfg.Email, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to configure mailer: %w", err)
	}
	if err := service.NewNotificationService(mail, log).Subscribe(bus); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to subscribe notification service: %w", err)
	}
	log.Infof("Notifications enabled via %s mailer", cfg.Email.Provider)

	// Initialize all layers
	server, authUsecase := initializeServer(cfg, log, db, redisClient, bus)
	app.Server = server

	if err := authUsecase.EnsureAdmin(ctx, cfg.Bootstrap); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// newEventBus prefers NATS and falls back to the in-process bus.
func newEventBus(cfg *config.Config, log *logrus.Logger) (event.Bus, error) {
	if cfg.NATS.URL == "" {
		log.Info("NATS_URL not set, using in-process event bus")
		return event.NewLocalBus(cfg.Events.Workers, cfg.Events.QueueSize, log), nil
	}

	bus, err := event.NewNATSBus(cfg.NATS.URL, log)
	if err != nil {
		return nil, err
	}
	log.Infof("Connected to NATS at %s", cfg.NATS.URL)
	return bus, nil
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, log *logrus.Logger, db *gorm.DB, redisClient *redis.Client, bus event.Bus) (*http.Server, usecase.AuthUsecase) {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	tokenRepo := repository.NewAuthTokenRepository(db)
	programRepo := repository.NewHealthProgramRepository(db)
	clientRepo := repository.NewClientRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	tokenCache := service.NewRedisTokenCache(redisClient, cfg.Auth.TokenCacheTTL)
	attemptLimiter := service.NewRedisOTPAttemptLimiter(redisClient, cfg.OTP.MaxAttempts, cfg.OTP.Window())

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, userRepo, roleRepo, otpRepo, tokenRepo, jwtService,
		tokenCache, attemptLimiter, auditService, bus, cfg.OTP.Window())
	programUsecase := usecase.NewProgramUsecase(log, programRepo, auditService)
	clientUsecase := usecase.NewClientUsecase(log, clientRepo, programRepo, enrollmentRepo, auditService, bus)
	enrollmentUsecase := usecase.NewEnrollmentUsecase(log, enrollmentRepo, clientRepo, programRepo, auditService, bus)
	dashboardUsecase := usecase.NewDashboardUsecase(log, clientRepo, programRepo, enrollmentRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	userHandler := handler.NewUserHandler(authUsecase, customValidator)
	programHandler := handler.NewProgramHandler(programUsecase, customValidator)
	clientHandler := handler.NewClientHandler(clientUsecase, customValidator)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentUsecase, customValidator)
	dashboardHandler := handler.NewDashboardHandler(dashboardUsecase)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authUsecase)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins...)

	// Initialize router
	router := deliveryHttp.NewRouter(authHandler, userHandler, programHandler, clientHandler,
		enrollmentHandler, dashboardHandler, auditLogHandler, authMiddleware, corsMiddleware)

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}, authUsecase
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close drains the event bus, then closes Redis and the database.
func (app *App) Close() {
	if app.Bus != nil {
		if err := app.Bus.Close(); err != nil {
			logrus.Errorf("Failed to close event bus: %v", err)
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
