package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	redisadapter "github.com/unhinged-listings/listing-service/internal/adapter/cache/redis"
	"github.com/unhinged-listings/listing-service/internal/adapter/httpserver"
	mongoadapter "github.com/unhinged-listings/listing-service/internal/adapter/mongo"
	natsadapter "github.com/unhinged-listings/listing-service/internal/adapter/nats"
	"github.com/unhinged-listings/listing-service/internal/auth"
	"github.com/unhinged-listings/listing-service/internal/config"
	"github.com/unhinged-listings/listing-service/internal/platform/logger"
	"github.com/unhinged-listings/listing-service/internal/platform/metrics"
	"github.com/unhinged-listings/listing-service/internal/port/cache"
	"github.com/unhinged-listings/listing-service/internal/usecase"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const metricsNamespace = "unhinged_listings"

type App struct {
	cfg           *config.Config
	log           *zap.Logger
	server        *httpserver.Server
	metricsServer *metrics.Server
	mongoClient   *mongo.Client
	redisClient   *redis.Client
	natsPublisher *natsadapter.Publisher
}

// New wires every component and runs the startup seeding. Any failure here
// is fatal for the process.
func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	log, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPServer.Port),
		zap.String("mongo_database", cfg.MongoDB.Database),
	)

	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB client", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	log.Info("Successfully connected to MongoDB")

	listingRepo := mongoadapter.NewListingMongoRepository(mongoClient, cfg.MongoDB.Database)
	settingsRepo := mongoadapter.NewSettingsMongoRepository(mongoClient, cfg.MongoDB.Database)

	if err := listingRepo.EnsureIndexes(ctx); err != nil {
		log.Error("Failed to create listing indexes", zap.Error(err))
		return nil, err
	}

	var cacheRepo cache.CacheRepository
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redisadapter.NewRedisClient(cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
		}
		cacheRepo = redisadapter.NewRedisCacheRepository(redisClient, log)
	} else {
		log.Info("REDIS_ADDR not set, listing cache disabled")
	}

	var publisher *natsadapter.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = natsadapter.NewPublisher(cfg.NATS, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
		}
	} else {
		log.Info("NATS_URL not set, event publishing disabled")
	}

	listingUC := newListingUseCase(listingRepo, publisher, cacheRepo, log)
	settingsUC := usecase.NewSettingsUseCase(settingsRepo, log)

	seeder := usecase.NewSeeder(listingRepo, log)
	if err := seeder.SeedIfEmpty(ctx); err != nil {
		log.Error("Failed to seed initial listings", zap.Error(err))
		return nil, err
	}

	metricsManager := metrics.NewManager(metricsNamespace)
	var metricsServer *metrics.Server
	if cfg.Metrics.Port != "" {
		metricsServer = metrics.NewServer(cfg.Metrics.Port, metricsManager.Registry)
	}

	gate := auth.NewGate(cfg.Admin.Password)
	handler := httpserver.NewHandler(listingUC, settingsUC, gate, metricsManager, log)
	router := httpserver.NewRouter(handler, gate, metricsManager, log, cfg.HTTPServer.CORSOrigin, cfg.Static.Dir)
	server := httpserver.NewServer(cfg.HTTPServer, router, log)

	return &App{
		cfg:           cfg,
		log:           log,
		server:        server,
		metricsServer: metricsServer,
		mongoClient:   mongoClient,
		redisClient:   redisClient,
		natsPublisher: publisher,
	}, nil
}

// newListingUseCase keeps the nil-interface wiring in one place: passing a
// typed nil *Publisher through an interface value would defeat the usecase's
// nil checks.
func newListingUseCase(
	repo *mongoadapter.ListingMongoRepository,
	publisher *natsadapter.Publisher,
	cacheRepo cache.CacheRepository,
	log *zap.Logger,
) *usecase.ListingUseCase {
	var pub usecase.ListingPublisher
	if publisher != nil {
		pub = publisher
	}
	return usecase.NewListingUseCase(repo, pub, cacheRepo, log)
}

// Run starts the servers and blocks until a shutdown signal arrives, then
// drains everything gracefully.
func (a *App) Run() {
	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	if a.metricsServer != nil {
		go func() {
			if err := a.metricsServer.Start(a.log); err != nil {
				a.log.Error("Metrics server stopped", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	received := <-quit
	a.log.Info("Received shutdown signal, shutting down", zap.String("signal", received.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful+5*time.Second)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		a.log.Error("Error during HTTP server graceful shutdown", zap.Error(err))
	} else {
		a.log.Info("HTTP server stopped")
	}

	if a.metricsServer != nil {
		if err := a.metricsServer.Stop(shutdownCtx); err != nil {
			a.log.Error("Error stopping metrics server", zap.Error(err))
		}
	}

	if a.natsPublisher != nil {
		a.natsPublisher.Close()
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis client", zap.Error(err))
		}
	}

	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.log.Error("Error disconnecting from MongoDB", zap.Error(err))
		} else {
			a.log.Info("MongoDB connection closed")
		}
	}

	a.log.Info("Application shut down")
	_ = a.log.Sync()
}
