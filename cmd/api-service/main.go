package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/wanderplan/wanderplan/internal/api/handler"
	"github.com/wanderplan/wanderplan/internal/api/router"
	"github.com/wanderplan/wanderplan/internal/config"
	"github.com/wanderplan/wanderplan/internal/itinerary"
	"github.com/wanderplan/wanderplan/internal/job/store"
	"github.com/wanderplan/wanderplan/internal/pipeline"
	"github.com/wanderplan/wanderplan/internal/pipeline/providers"
	"github.com/wanderplan/wanderplan/shared/logger"
	"github.com/wanderplan/wanderplan/shared/postgresql"
	"github.com/wanderplan/wanderplan/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("store", cfg.Store.Driver),
		slog.String("dispatch", cfg.Dispatch.Mode),
	)

	// Root context for background pieces (sweeper, inline pipeline runs).
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Job and itinerary stores per the configured driver.
	var (
		jobs        store.Store
		itineraries itinerary.Store
		dbClient    *postgresql.Client
	)
	switch cfg.Store.Driver {
	case config.StorePostgres:
		dbClient, err = initPostgreSQL(&cfg.Database, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer dbClient.Close()

		jobs = store.NewPostgresStore(dbClient.GetDB())
		itineraries = itinerary.NewPostgresStore(dbClient.GetDB())
		appLogger.Info("Database connection established")
	default:
		memStore := store.NewMemoryStore(cfg.Store.JobTTL, appLogger.Logger)
		memStore.StartSweeper(ctx, cfg.Store.SweepInterval)
		jobs = memStore
		itineraries = itinerary.NewMemoryStore()
	}

	runner := pipeline.NewRunner(&pipeline.Config{
		Jobs:          jobs,
		Itineraries:   itineraries,
		Collaborators: catalogCollaborators(cfg.Pipeline.ProviderLatency),
		StageTimeout:  cfg.Pipeline.StageTimeout,
		Logger:        appLogger.Logger,
	})

	// Dispatcher per the configured mode.
	var (
		dispatcher   handler.Dispatcher
		rabbitClient *rabbitmq.Client
	)
	switch cfg.Dispatch.Mode {
	case config.DispatchQueue:
		rabbitClient, err = initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		defer rabbitClient.Close()

		dispatcher = handler.NewQueueDispatcher(rabbitClient, appLogger.Logger)
		appLogger.Info("RabbitMQ connection established")
	default:
		dispatcher = handler.NewInlineDispatcher(runner, appLogger.Logger)
	}

	r := initRouter(cfg.App.Environment, &handler.Dependencies{
		Logger:                 appLogger.Logger,
		Jobs:                   jobs,
		Itineraries:            itineraries,
		Dispatcher:             dispatcher,
		PollingIntervalSeconds: cfg.Pipeline.PollingIntervalSeconds,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start",
				slog.Any("error", err),
			)
			os.Exit(1)
		}
	}()

	appLogger.Info("API service is running",
		slog.String("address", addr),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}

// catalogCollaborators wires the static catalog behind every search port.
func catalogCollaborators(latency time.Duration) pipeline.Collaborators {
	catalog := providers.NewCatalog(latency)
	return pipeline.Collaborators{
		Flights:     catalog,
		Hotels:      catalog,
		Restaurants: catalog,
		Activities:  catalog,
	}
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(environment string, deps *handler.Dependencies) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(deps)
}
