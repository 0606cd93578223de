package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"order-notifier/internal/config"
	"order-notifier/internal/credential"
	"order-notifier/internal/database"
	"order-notifier/internal/dispatch"
	"order-notifier/internal/handler"
	"order-notifier/internal/logger"
	"order-notifier/internal/messaging"
	"order-notifier/internal/middleware"
	"order-notifier/internal/pipeline"
	"order-notifier/internal/recipient"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to YAML config (optional)")
	envFile := flag.String("env", ".env", "path to .env file (optional)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath, *envFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
		Service:  "order-notifier",
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)
	zap.L().Info("Logger initialized", zap.String("logLevel", cfg.Log.Level), zap.String("env", cfg.Env))

	// --- External connections ---
	pgPool, err := setupPostgres(cfg.Database)
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.NewMigrator(pgPool, log).Up(context.Background()); err != nil {
			zap.L().Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.TokenCache.Mode == config.TokenCacheRedis {
		redisClient, err = setupRedis(cfg.TokenCache)
		if err != nil {
			zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	var mqConn *amqp.Connection
	if cfg.RabbitMQ.URI != "" {
		mqConn, err = connectRabbitMQ(cfg.RabbitMQ, log)
		if err != nil {
			zap.L().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()
	} else {
		zap.L().Warn("RABBITMQ_URI not set, event consumer and stale token publisher are disabled")
	}

	// --- Dependency injection ---
	userRepo := database.NewPgUserRepository(pgPool, log)
	resolver := recipient.NewResolver(userRepo, log)

	credSource := credential.NewFileSource(cfg.FCM.CredentialsPath)
	tokenProvider := newTokenProvider(cfg, redisClient, log)

	sender := newSender(cfg.FCM, log)
	dispatcher := dispatch.NewDispatcher(sender, cfg.FCM.Concurrency, cfg.FCM.SendTimeout, log)

	var staleReporter pipeline.StaleTokenReporter
	if mqConn != nil {
		publisher, err := messaging.NewStaleTokenPublisher(mqConn, cfg.RabbitMQ.CleanupQueue, log)
		if err != nil {
			zap.L().Fatal("Failed to create StaleTokenPublisher", zap.Error(err))
		}
		staleReporter = publisher
	}

	notifier := pipeline.NewPipeline(resolver, credSource, tokenProvider, dispatcher, staleReporter, log)

	var consumer *messaging.Consumer
	consumerDone := make(chan error, 1)
	if mqConn != nil {
		processor := messaging.NewProcessor(log, notifier, cfg.RabbitMQ.ProcessTimeout)
		consumer = messaging.NewConsumer(mqConn, log, cfg.RabbitMQ.EventsQueue, cfg.RabbitMQ.Concurrency, processor)
		go func() {
			zap.L().Info("Starting change event consumer...")
			err := consumer.Start()
			if err != nil {
				zap.L().Error("Change event consumer stopped with error", zap.Error(err))
			}
			consumerDone <- err
		}()
	}

	// --- HTTP server (gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := newRouter(cfg.Webhook, notifier, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zap.L().Info("Starting HTTP server", zap.String("port", cfg.Server.Port), zap.String("sender", sender.Name()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		zap.L().Info("Shutting down server...")
	case err := <-consumerDone:
		zap.L().Error("Change event consumer exited, shutting down", zap.Error(err))
		consumer = nil
	}

	if consumer != nil {
		consumer.Stop()
		<-consumerDone
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}

// newRouter собирает gin: access log, recovery, метрики, /health и вебхуки.
func newRouter(cfg config.WebhookConfig, processor handler.EventProcessor, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.ZapLoggingMiddlewareForGin(log))
	router.Use(gin.Recovery())

	// до регистрации роутов: gin применяет middleware только к роутам, добавленным после Use
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	handler.RegisterHealth(router)

	var webhookAuth gin.HandlerFunc
	if cfg.Secret != "" {
		webhookAuth = middleware.WebhookAuth(cfg.Secret, cfg.RequiredRole, log)
	} else {
		log.Warn("WEBHOOK_JWT_SECRET not set, webhook endpoints are unauthenticated")
	}
	handler.NewNotificationHandler(processor, log).RegisterRoutes(router, webhookAuth)
	return router
}

func newTokenProvider(cfg *config.Config, redisClient *redis.Client, log *zap.Logger) pipeline.TokenProvider {
	jwtProvider := credential.NewJWTProvider(&http.Client{Timeout: cfg.FCM.TokenTimeout}, cfg.FCM.TokenURL, log)

	switch cfg.TokenCache.Mode {
	case config.TokenCacheMemory:
		return credential.NewCachingProvider(jwtProvider, credential.NewMemoryCache(), cfg.TokenCache.Skew, log)
	case config.TokenCacheRedis:
		return credential.NewCachingProvider(jwtProvider, credential.NewRedisCache(redisClient), cfg.TokenCache.Skew, log)
	default:
		return jwtProvider
	}
}

func newSender(cfg config.FCMConfig, log *zap.Logger) dispatch.Sender {
	switch cfg.Sender {
	case dispatch.SenderSDK:
		return dispatch.NewSDKSender(nil, cfg.SendTimeout, log)
	case dispatch.SenderStub:
		zap.L().Warn("FCM_SENDER=stub, notifications are only logged")
		return dispatch.NewStubSender(log)
	default:
		return dispatch.NewRESTSender(cfg.Endpoint, nil, cfg.SendTimeout, log)
	}
}

// setupPostgres создает пул соединений с повторными попытками.
func setupPostgres(cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MaxConnIdleTime = cfg.IdleTimeout

	maxRetries := cfg.ConnectRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		connectCtx, connectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		connectCancel()
		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
			err = pool.Ping(pingCtx)
			pingCancel()
			if err == nil {
				zap.L().Info("Connected to PostgreSQL", zap.Int("attempt", attempt))
				return pool, nil
			}
			pool.Close()
		}

		lastErr = err
		zap.L().Warn("PostgreSQL connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		if attempt < maxRetries {
			time.Sleep(cfg.RetryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", maxRetries, lastErr)
}

// setupRedis подключается к Redis для общего кэша access token'ов.
func setupRedis(cfg config.TokenCacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	maxRetries := 10
	retryDelay := 3 * time.Second
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := client.Ping(pingCtx).Result()
		pingCancel()
		if err == nil {
			zap.L().Info("Connected to Redis", zap.String("address", cfg.RedisAddr), zap.Int("attempt", attempt))
			return client, nil
		}
		lastErr = err
		zap.L().Warn("Redis ping failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < maxRetries {
			time.Sleep(retryDelay)
		}
	}
	client.Close()
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", maxRetries, lastErr)
}

// connectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками
func connectRabbitMQ(cfg config.RabbitMQConfig, logger *zap.Logger) (*amqp.Connection, error) {
	var err error
	for i := 0; i < cfg.ConnectRetries; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(cfg.URI)
		if err == nil {
			logger.Info("Подключение к RabbitMQ успешно установлено")
			go func() {
				notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))
				if closeErr := <-notifyClose; closeErr != nil {
					logger.Error("Соединение с RabbitMQ разорвано", zap.Error(closeErr))
				}
			}()
			return conn, nil
		}
		logger.Warn("Не удалось подключиться к RabbitMQ, попытка переподключения...",
			zap.Error(err),
			zap.Int("retry", i+1),
			zap.Duration("delay", cfg.RetryDelay),
		)
		time.Sleep(cfg.RetryDelay)
	}
	return nil, fmt.Errorf("не удалось подключиться к RabbitMQ после %d попыток: %w", cfg.ConnectRetries, err)
}
