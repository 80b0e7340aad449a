package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	appControllers "github.com/yigit/studentrecords/internal/app/controllers"
	appMigrations "github.com/yigit/studentrecords/internal/app/migrations"
	appRepos "github.com/yigit/studentrecords/internal/app/repositories"
	appRoutes "github.com/yigit/studentrecords/internal/app/routes"
	appServices "github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/config"
	"github.com/yigit/studentrecords/internal/db"
	"github.com/yigit/studentrecords/internal/docstore"
	appMiddleware "github.com/yigit/studentrecords/internal/middleware"
	"github.com/yigit/studentrecords/internal/pkg/logger"
	"github.com/yigit/studentrecords/internal/pkg/metrics"
	"github.com/yigit/studentrecords/internal/web"
)

// ConfigPathEnv overrides the default config file location
const ConfigPathEnv = "CONFIG_PATH"

const storeConnectTimeout = 10 * time.Second

// Dependencies holds all the application dependencies
type Dependencies struct {
	Config            *config.Config
	Store             docstore.Store
	Metrics           *metrics.Metrics // nil when metrics are disabled
	StudentRepository *appRepos.StudentRepository
	StudentService    *appServices.StudentService
	StudentController *appControllers.StudentController
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, error) {
	configPath := os.Getenv(ConfigPathEnv)
	if configPath == "" {
		configPath = filepath.Join("configs", "config.yaml")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, err
	}

	logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	logger.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Str("storeDriver", cfg.Store.Driver).
		Msg("Logger configured")
	return cfg, nil
}

// SetupMetrics creates the prometheus collectors, or returns nil when
// metrics are disabled.
func SetupMetrics(cfg *config.Config) *metrics.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.New(nil)
}

// SetupStore opens the configured document store. Postgres migrations run
// here when auto-migrate is enabled. Store operations are reported to m when
// it is not nil.
func SetupStore(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (docstore.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
	defer cancel()

	unique := appRepos.StudentConstraints(cfg.Store.Collection)

	var (
		store docstore.Store
		err   error
	)
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		logger.Info().Str("path", cfg.SQLite.Path).Msg("Opening SQLite document store...")
		store, err = docstore.NewSQLiteStore(cfg.SQLite.Path, unique...)
	case config.DriverPostgres:
		store, err = setupPostgresStore(ctx, cfg, unique)
	case config.DriverRedis:
		store, err = setupRedisStore(ctx, cfg, unique)
	default:
		err = fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Store.Driver).Msg("Failed to open document store")
		return nil, err
	}

	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("document store ping failed: %w", err)
	}
	logger.Info().Str("driver", cfg.Store.Driver).Str("collection", cfg.Store.Collection).Msg("Document store ready")

	if m != nil {
		store = docstore.Instrument(store, m)
	}
	return store, nil
}

func setupPostgresStore(ctx context.Context, cfg *config.Config, unique []docstore.UniqueConstraint) (docstore.Store, error) {
	logger.Info().Str("host", cfg.Database.Host).Str("dbname", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		logger.Info().Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(database.Pool).Migrate(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		logger.Info().Msg("Database migrations successfully applied.")
	}

	return docstore.NewPostgresStore(database, unique...), nil
}

func setupRedisStore(ctx context.Context, cfg *config.Config, unique []docstore.UniqueConstraint) (docstore.Store, error) {
	logger.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("Connecting to Redis...")
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	return docstore.NewRedisStore(client, cfg.Redis.KeyPrefix, unique...), nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, store docstore.Store, m *metrics.Metrics) *Dependencies {
	deps := &Dependencies{Config: cfg, Store: store, Metrics: m}

	var events appServices.EventRecorder
	if m != nil {
		events = m
	}

	deps.StudentRepository = appRepos.NewStudentRepository(store, cfg.Store.Collection)
	deps.StudentService = appServices.NewStudentService(deps.StudentRepository, events)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService, cfg.Store.Driver)

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		logger.Info().Msg("Setting Gin mode to release")
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
		logger.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(templates)
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(),
	)

	if deps.Metrics != nil {
		router.Use(appMiddleware.Metrics(deps.Metrics))
		appRoutes.SetupMetrics(router, deps.Metrics, cfg.Metrics.Path)
	}

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.StudentController)

	return router, nil
}
