package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/placementhub/internal/app/auth"
	appControllers "github.com/yigit/placementhub/internal/app/controllers"
	appMigrations "github.com/yigit/placementhub/internal/app/migrations"
	appRepos "github.com/yigit/placementhub/internal/app/repositories"
	appRoutes "github.com/yigit/placementhub/internal/app/routes"
	appServices "github.com/yigit/placementhub/internal/app/services"
	"github.com/yigit/placementhub/internal/config"
	"github.com/yigit/placementhub/internal/db"
	appMiddleware "github.com/yigit/placementhub/internal/middleware"
	pkgAuth "github.com/yigit/placementhub/internal/pkg/auth"
	"github.com/yigit/placementhub/internal/pkg/email"
	"github.com/yigit/placementhub/internal/pkg/filestorage"
	"github.com/yigit/placementhub/internal/pkg/helpers"
	"github.com/yigit/placementhub/internal/pkg/ledger"
	"github.com/yigit/placementhub/internal/pkg/logger"
	"github.com/yigit/placementhub/internal/pkg/notify"
	"github.com/yigit/placementhub/internal/pkg/websocket"
	"github.com/yigit/placementhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos        *appRepos.Repositories
	JWTService   *pkgAuth.JWTService
	AuthzService *appAuth.AuthorizationService
	EmailService email.EmailService
	FileStorage  *filestorage.LocalStorage

	// Process-wide notification feed; lives from startup to shutdown
	Notifications *notify.Store
	Simulator     *notify.Simulator
	Hub           *websocket.Hub
	Issuer        *ledger.Issuer

	AuthService         appServices.AuthService
	UserService         appServices.UserService
	StudentService      appServices.StudentService
	CompanyService      appServices.CompanyService
	JobService          appServices.JobService
	ApplicationService  appServices.ApplicationService
	CertificateService  appServices.CertificateService
	InterviewService    appServices.InterviewService
	DashboardService    appServices.DashboardService
	NotificationService appServices.NotificationService
	ExportService       appServices.ExportService

	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.EqualFold(cfg.Logging.Format, "text"),
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	dbPool, err := db.Connect(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lgr.Info().Str("path", cfg.Database.MigrationsPath).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(dbPool).MigrateDir(ctx, cfg.Database.MigrationsPath); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	opts := seed.Options{
		AdminEmail:    cfg.Seed.AdminEmail,
		AdminPassword: cfg.Seed.AdminPassword,
		SampleData:    cfg.Seed.SampleData,
	}
	if err := seed.CreateDefaultData(ctx, appRepos.NewRepositories(dbPool), opts, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)
	repos := deps.Repos

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(
		cfg.Server.StoragePath,
		strings.TrimRight(cfg.Server.BaseURL, "/")+"/uploads",
		filestorage.WithAllowedExtensions(".pdf", ".doc", ".docx"),
	)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(repos.StudentRepository, repos.CompanyRepository)
	deps.EmailService = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.From,
		BaseURL:   cfg.Server.BaseURL,
	}, logger.Component("email"))

	deps.Notifications = notify.NewStore(notify.WithCapacity(cfg.Notifications.Capacity))
	if cfg.Notifications.SimulatorEnabled {
		deps.Simulator = notify.NewSimulator(deps.Notifications,
			helpers.ParseDuration(cfg.Notifications.SimulatorInterval, notify.DefaultInterval))
	}
	deps.Hub = websocket.NewHub(deps.Notifications, logger.Component("websocket"))
	deps.Issuer = ledger.NewIssuer(ledger.Config{
		PreparingDelay:    helpers.ParseDuration(cfg.Ledger.PreparingDelay, 800*time.Millisecond),
		SigningDelay:      helpers.ParseDuration(cfg.Ledger.SigningDelay, 1200*time.Millisecond),
		BroadcastingDelay: helpers.ParseDuration(cfg.Ledger.BroadcastingDelay, 1500*time.Millisecond),
		ConfirmingDelay:   helpers.ParseDuration(cfg.Ledger.ConfirmingDelay, time.Second),
	})

	deps.AuthService = appServices.NewAuthService(
		repos.UserRepository,
		repos.TokenRepository,
		repos.VerificationTokenRepository,
		repos.PasswordResetRepository,
		repos.StudentRepository,
		repos.CompanyRepository,
		deps.JWTService,
		deps.EmailService,
		logger.Component("auth"),
	)
	deps.UserService = appServices.NewUserService(repos.UserRepository, repos.TokenRepository, logger.Component("users"))
	deps.StudentService = appServices.NewStudentService(repos.StudentRepository, deps.AuthzService, deps.FileStorage, logger.Component("students"))
	deps.CompanyService = appServices.NewCompanyService(repos.CompanyRepository, deps.AuthzService, logger.Component("companies"))
	deps.NotificationService = appServices.NewNotificationService(deps.Notifications)
	deps.JobService = appServices.NewJobService(
		repos.JobRepository,
		repos.CompanyRepository,
		repos.ApplicationRepository,
		deps.AuthzService,
		deps.Notifications,
		logger.Component("jobs"),
	)
	deps.ApplicationService = appServices.NewApplicationService(
		repos.ApplicationRepository,
		repos.JobRepository,
		repos.StudentRepository,
		repos.CompanyRepository,
		deps.AuthzService,
		deps.Notifications,
		deps.EmailService,
		logger.Component("applications"),
	)
	deps.InterviewService = appServices.NewInterviewService(
		repos.InterviewRepository,
		repos.ApplicationRepository,
		repos.JobRepository,
		repos.StudentRepository,
		deps.AuthzService,
		deps.Notifications,
		deps.EmailService,
		appServices.InterviewConfig{
			DailyCapacity:   cfg.Interviews.DailyCapacity,
			DefaultDuration: cfg.Interviews.DefaultDuration,
		},
		logger.Component("interviews"),
	)
	deps.CertificateService = appServices.NewCertificateService(
		repos.CertificateRepository,
		repos.StudentRepository,
		deps.AuthzService,
		deps.Issuer,
		deps.Notifications,
		logger.Component("certificates"),
	)
	deps.DashboardService = appServices.NewDashboardService(
		repos.StatsRepository,
		repos.JobRepository,
		repos.ApplicationRepository,
		repos.InterviewRepository,
		repos.CertificateRepository,
		deps.AuthzService,
		deps.NotificationService,
		logger.Component("dashboard"),
	)
	deps.ExportService = appServices.NewExportService(
		repos.StudentRepository,
		repos.CompanyRepository,
		repos.ApplicationRepository,
		repos.CertificateRepository,
		deps.AuthzService,
		logger.Component("exports"),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, repos.UserRepository)

	wsHandler := websocket.NewHandler(deps.Hub, cfg.CORS.AllowedOrigins, logger.Component("websocket"))
	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, lgr),
		User:         appControllers.NewUserController(deps.UserService),
		Student:      appControllers.NewStudentController(deps.StudentService, deps.ExportService, lgr),
		Company:      appControllers.NewCompanyController(deps.CompanyService),
		Job:          appControllers.NewJobController(deps.JobService),
		Application:  appControllers.NewApplicationController(deps.ApplicationService, lgr),
		Certificate:  appControllers.NewCertificateController(deps.CertificateService, lgr),
		Interview:    appControllers.NewInterviewController(deps.InterviewService),
		Dashboard:    appControllers.NewDashboardController(deps.DashboardService),
		Notification: appControllers.NewNotificationController(deps.NotificationService),
		Export:       appControllers.NewExportController(deps.ExportService),
		Stream:       wsHandler.HandleConnection,
	}

	return deps, nil
}

// StartBackground starts the websocket hub, the notification simulator and
// the expiry sweep for jobs and refresh tokens. They run until Stop is called.
func (d *Dependencies) StartBackground(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.Hub.Run(ctx)
	}()

	if d.Simulator != nil {
		d.Simulator.Start(ctx)
	}

	interval := helpers.ParseDuration(cfg.Jobs.ExpirySweepInterval, 5*time.Minute)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.sweepExpired(ctx, interval)
	}()
}

func (d *Dependencies) sweepExpired(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if closed, err := d.JobService.CloseExpired(ctx); err != nil {
				d.Logger.Error().Err(err).Msg("Failed to close expired jobs")
			} else if closed > 0 {
				d.Logger.Info().Int64("closed", closed).Msg("Closed jobs past their deadline")
			}
			if purged, err := d.Repos.TokenRepository.CleanupExpiredTokens(ctx); err != nil {
				d.Logger.Warn().Err(err).Msg("Failed to purge refresh tokens")
			} else if purged > 0 {
				d.Logger.Debug().Int64("purged", purged).Msg("Purged stale refresh tokens")
			}
		}
	}
}

// Stop halts background work and waits for in-flight certificate issuances
func (d *Dependencies) Stop() {
	if d.Simulator != nil {
		d.Simulator.Stop()
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.CertificateService.Close()
	d.wg.Wait()
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

	if err := appMiddleware.RegisterValidators(); err != nil {
		lgr.Error().Err(err).Msg("Failed to register custom validators")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(logger.Component("http")))
	router.Use(appMiddleware.CORS(cfg.CORS.AllowedOrigins))

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	router.Static("/uploads", cfg.Server.StoragePath)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
