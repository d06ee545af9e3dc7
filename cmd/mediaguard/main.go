package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	appmoderation "github.com/ClearVault/MediaGuard/pkg/app/moderation"
	"github.com/ClearVault/MediaGuard/pkg/cache"
	"github.com/ClearVault/MediaGuard/pkg/common"
	"github.com/ClearVault/MediaGuard/pkg/config"
	handlers "github.com/ClearVault/MediaGuard/pkg/handlers/http"
	"github.com/ClearVault/MediaGuard/pkg/infra/classifier"
	"github.com/ClearVault/MediaGuard/pkg/infra/database"
	"github.com/ClearVault/MediaGuard/pkg/infra/httpx"
	"github.com/ClearVault/MediaGuard/pkg/infra/jwt"
	infraLogger "github.com/ClearVault/MediaGuard/pkg/infra/logger"
	"github.com/ClearVault/MediaGuard/pkg/infra/prometheus"
	"github.com/ClearVault/MediaGuard/pkg/infra/repository"
	"github.com/ClearVault/MediaGuard/pkg/infra/storage"
	"github.com/ClearVault/MediaGuard/pkg/middleware"
	"github.com/ClearVault/MediaGuard/pkg/moderation"
	"github.com/ClearVault/MediaGuard/pkg/server"
	"github.com/ClearVault/MediaGuard/pkg/server/router"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx := context.Background()
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	prometheus.Initialize()

	db, err := database.NewDB(logger, &database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Error("failed to close database")
		}
	}()

	verdictCache, err := cache.NewCache(common.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}
	defer func() {
		if err := verdictCache.Close(); err != nil {
			logger.WithError(err).Error("failed to close cache")
		}
	}()

	classifierBreaker := httpx.NewCircuitBreaker(httpx.BreakerSettings{
		Name:                     "classifier",
		CallTimeout:              cfg.Breakers.Classifier.Timeout(),
		ErrorThresholdPercentage: cfg.Breakers.Classifier.ErrorThresholdPercentage,
		MinRequests:              cfg.Breakers.Classifier.MinRequests,
		ResetTimeout:             cfg.Breakers.Classifier.ResetTimeout(),
		Interval:                 cfg.Breakers.Classifier.Interval(),
		OnStateChange:            breakerStateObserver(logger),
	})
	storageBreaker := httpx.NewCircuitBreaker(httpx.BreakerSettings{
		Name:                     "storage",
		CallTimeout:              cfg.Breakers.Storage.Timeout(),
		ErrorThresholdPercentage: cfg.Breakers.Storage.ErrorThresholdPercentage,
		MinRequests:              cfg.Breakers.Storage.MinRequests,
		ResetTimeout:             cfg.Breakers.Storage.ResetTimeout(),
		Interval:                 cfg.Breakers.Storage.Interval(),
		OnStateChange:            breakerStateObserver(logger),
	})

	httpClient := httpx.NewFastHTTPClient(
		httpx.WithTimeout(cfg.Breakers.Classifier.Timeout() + time.Second),
	)
	azureClient := classifier.NewAzureClient(httpClient, classifier.Config{
		Endpoint:   cfg.Classifier.Endpoint,
		APIKey:     cfg.Classifier.APIKey,
		OutputType: cfg.Classifier.OutputType,
	}, logger)

	gateway := moderation.NewClassifierGateway(azureClient, classifierBreaker, moderation.GatewayTimeouts{
		Image: time.Duration(cfg.Moderation.Timeouts.ImageMs) * time.Millisecond,
		Frame: time.Duration(cfg.Moderation.Timeouts.VideoPerFrameMs) * time.Millisecond,
	}, logger)

	rules := moderation.NewRuleEngine(
		cfg.Moderation.Thresholds,
		cfg.Moderation.CompoundRules,
		cfg.Moderation.Bonuses,
	)
	engine := moderation.NewEngine(gateway, rules, logger)

	uploader, err := storage.NewS3Storage(ctx, storage.Config{
		Bucket:   cfg.Storage.Bucket,
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
		Username: cfg.Storage.Username,
		Password: cfg.Storage.Password,
	}, storageBreaker, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize media storage: %v", err)
	}

	verdictRepository := repository.NewVerdictRepository(db.DB)
	moderationService := appmoderation.NewService(engine, verdictCache, verdictRepository, uploader, logger)

	jwtManager := jwt.NewJwtManager(&cfg.Server)

	middlewareTransport := middleware.Transport{
		AuthMiddleware:    middleware.NewAdminAuthMiddleware(logger, jwtManager),
		RecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
		RequestMiddleware: middleware.NewRequestMiddleware(logger),
	}

	handlerTransport := handlers.HandlerTransport{
		ModerateImageHandler: handlers.NewModerateImageHandler(logger, moderationService),
		ModerateVideoHandler: handlers.NewModerateVideoHandler(logger, moderationService),
		TestRulesHandler:     handlers.NewTestRulesHandler(logger, moderationService),
		ListVerdictsHandler:  handlers.NewListVerdictsHandler(logger, verdictRepository),
		GetVersionHandler:    handlers.NewGetVersionHandler(logger),
	}

	srv := server.NewModerationServer(server.ModerationServerDI{
		Config: cfg,
		Logger: logger,
		Routers: []router.ServerRouter{
			router.NewModerationRouter(middlewareTransport, handlerTransport),
		},
	})

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.WithError(err).Fatal("server failed")
	case sig := <-sigChan:
		logger.WithField("signal", sig.String()).Info("shutting down")
		if err := srv.Shutdown(); err != nil {
			logger.WithError(err).Error("graceful shutdown failed")
		}
	}
}

func breakerStateObserver(logger *logrus.Logger) func(name, from, to string) {
	return func(name, from, to string) {
		logger.WithFields(logrus.Fields{
			"breaker": name,
			"from":    from,
			"to":      to,
		}).Warn("circuit breaker state change")
		prometheus.CircuitBreakerState.WithLabelValues(name).Set(prometheus.BreakerStateValue(to))
		prometheus.CircuitBreakerTransitions.WithLabelValues(name, to).Inc()
	}
}
