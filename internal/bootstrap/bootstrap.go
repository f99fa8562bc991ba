package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appControllers "github.com/eduhealth/schoolhealth/internal/app/controllers"
	appMigrations "github.com/eduhealth/schoolhealth/internal/app/migrations"
	appRepos "github.com/eduhealth/schoolhealth/internal/app/repositories"
	appRoutes "github.com/eduhealth/schoolhealth/internal/app/routes"
	appServices "github.com/eduhealth/schoolhealth/internal/app/services"
	"github.com/eduhealth/schoolhealth/internal/config"
	"github.com/eduhealth/schoolhealth/internal/db"
	appMiddleware "github.com/eduhealth/schoolhealth/internal/middleware"
	pkgAuth "github.com/eduhealth/schoolhealth/internal/pkg/auth"
	"github.com/eduhealth/schoolhealth/internal/pkg/email"
	"github.com/eduhealth/schoolhealth/internal/pkg/helpers"
	"github.com/eduhealth/schoolhealth/internal/pkg/logger"
	"github.com/eduhealth/schoolhealth/internal/pkg/websocket"
	"github.com/eduhealth/schoolhealth/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    *appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	Hub            *websocket.Hub
	Dispatcher     *appServices.NotificationDispatcher
	Logger         zerolog.Logger

	cancel context.CancelFunc
}

// Stop ends the background workers started by BuildDependencies
func (d *Dependencies) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
}

// ConfigPath returns the config file location, overridable with CONFIG_PATH
func ConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return filepath.Join("configs", "config.yaml")
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(ConfigPath())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  strings.ToLower(cfg.Logging.Format) == "text",
		Service: "schoolhealth",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL, applies migrations and seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	dbPool, err := db.NewPool(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := RunMigrations(ctx, cfg, dbPool, lgr); err != nil {
		dbPool.Close()
		return nil, err
	}

	if err := SeedDefaults(ctx, cfg, appRepos.NewRepositories(dbPool), lgr); err != nil {
		// Startup continues; the admin CLI can seed again later
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// RunMigrations applies the pending files of the configured migrations directory
func RunMigrations(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(dbPool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// SeedDefaults creates the configured admin account and default classes
func SeedDefaults(ctx context.Context, cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	return seed.CreateDefaultData(ctx,
		seed.Stores{
			Users:    repos.UserRepository,
			Students: repos.StudentRepository,
			Classes:  repos.ClassRepository,
		},
		seed.Options{
			AdminEmail:      cfg.Seed.AdminEmail,
			AdminPassword:   cfg.Seed.AdminPassword,
			Grades:          cfg.Seed.Grades,
			ClassesPerGrade: cfg.Seed.ClassesPerGrade,
		},
		lgr,
	)
}

// BuildDependencies initializes repositories, services, background workers and controllers.
// The workers run until Stop is called.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	deps := &Dependencies{Logger: lgr, cancel: cancel}

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	// Notification push: websocket hub plus email, fed by the dispatcher queue
	deps.Hub = websocket.NewHub(lgr.With().Str("component", "ws-hub").Logger())
	go deps.Hub.Run(ctx)

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.Server.BaseURL,
	}, lgr)
	if !cfg.SMTPEnabled() {
		lgr.Warn().Msg("SMTP not configured, notification emails will only be logged")
	}

	deps.Dispatcher = appServices.NewNotificationDispatcher(deps.Hub, mailer, deps.Repos.UserRepository,
		lgr.With().Str("component", "dispatcher").Logger())
	go deps.Dispatcher.Run(ctx)

	deps.Services = appServices.NewServices(deps.Repos, deps.JWTService, deps.Dispatcher,
		appServices.WorkflowOptions{
			StrictTransitions:    cfg.Workflow.StrictTransitions,
			NotifyOnStatusChange: cfg.Workflow.NotifyOnStatusChange,
		}, lgr)

	websocket.NewMessageHandler(deps.Services.Notifications, deps.Hub, lgr).Start(ctx)

	if cfg.Auth.SkipAuth {
		lgr.Warn().Msg("Authentication is DISABLED (auth.skip_auth); every request runs as the admin")
	}
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, cfg.Auth.SkipAuth)

	svc := deps.Services
	deps.Controllers = &appRoutes.Controllers{
		Auth:          appControllers.NewAuthController(svc.Auth, lgr),
		Parents:       appControllers.NewAccountController(svc.Parents),
		Staff:         appControllers.NewAccountController(svc.Staff),
		Classes:       appControllers.NewClassController(svc.Classes),
		Students:      appControllers.NewStudentController(svc.Students),
		HealthRecords: appControllers.NewHealthRecordController(svc.HealthRecords),
		Treatments:    appControllers.NewTreatmentController(svc.Treatments),
		Medicines:     appControllers.NewMedicineController(svc.Medicines),
		Deliveries:    appControllers.NewDeliveryController(svc.Deliveries),
		Examinations:  appControllers.NewCampaignController(svc.Examinations),
		Vaccinations:  appControllers.NewCampaignController(svc.Vaccinations),
		Notifications: appControllers.NewNotificationController(svc.Notifications),
		Feedbacks:     appControllers.NewFeedbackController(svc.Feedbacks),
		WebSocket:     websocket.NewHandler(deps.Hub, lgr),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
