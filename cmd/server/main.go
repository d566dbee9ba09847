package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blackboxscan/internal/client"
	"blackboxscan/internal/config"
	"blackboxscan/internal/database"
	"blackboxscan/internal/dispatcher"
	"blackboxscan/internal/handler"
	"blackboxscan/internal/logger"
	"blackboxscan/internal/messaging"
	"blackboxscan/internal/repository"
	"blackboxscan/internal/service"
	"blackboxscan/internal/web"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/zap"
)

const (
	maxRetries = 20
	retryDelay = 3 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	log.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("port", cfg.ServerPort),
		zap.String("analysis_api_url", cfg.AnalysisAPIURL),
	)

	// --- External connections ---
	ctx := context.Background()

	pgPool, err := setupPostgres(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()

	if cfg.Database.AutoMigrate {
		migrationLog := zerolog.New(os.Stdout).With().Timestamp().Str("component", "migrations").Logger()
		if err := database.Migrate(ctx, pgPool, migrationLog); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = setupRedis(ctx, cfg, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
	} else {
		log.Warn("REDIS_ADDR is empty, listing cache disabled and rate limits kept in memory")
	}

	publisher := messaging.NewNoopPublisher(log)
	if cfg.RabbitMQ.URL != "" {
		mqConn, err := connectRabbitMQ(cfg.RabbitMQ.URL, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()

		publisher, err = messaging.NewRabbitMQPublisher(mqConn, cfg.RabbitMQ.ContributionQueue, cfg.RabbitMQ.ContactQueue, log)
		if err != nil {
			log.Fatal("Failed to create event publisher", zap.Error(err))
		}
	} else {
		log.Warn("RABBITMQ_URL is empty, events are only logged")
	}
	defer publisher.Close()

	// --- Dependency injection ---
	analysisClient, err := client.NewAnalysisServiceClient(cfg.AnalysisAPIURL, cfg.ClientTimeout, log)
	if err != nil {
		log.Fatal("Failed to create analysis service client", zap.Error(err))
	}
	analysisSvc := service.NewAnalysisService(dispatcher.New(analysisClient, log), log)

	var contributionRepo repository.ContributionRepository = repository.NewPgContributionRepository(pgPool, log)
	if redisClient != nil {
		contributionRepo = repository.NewCachedContributionRepository(contributionRepo, redisClient, cfg.Redis.CacheTTL, log)
	}
	contributionSvc := service.NewContributionService(contributionRepo, publisher, log)
	contactSvc := service.NewContactService(publisher, log)

	h := handler.NewHandler(handler.Options{
		FlashSecret:    cfg.FlashSecret,
		SecureCookies:  !cfg.IsDevelopment(),
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, log, analysisSvc, contributionSvc, contactSvc)

	renderer, err := web.NewTemplateRenderer("internal/web/templates", cfg.TemplatesDebug, log)
	if err != nil {
		log.Fatal("Failed to load templates", zap.Error(err))
	}

	// --- HTTP server ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	}
	router := newRouter(cfg, log, renderer, h, dispatchRateLimiter(cfg, redisClient, log))

	srv := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// Analysis calls may take up to the client timeout.
		WriteTimeout: cfg.ClientTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exiting")
}

// dispatchRateLimiter limits demo dispatches per client IP, in Redis when
// available.
func dispatchRateLimiter(cfg *config.Config, redisClient *redis.Client, log *zap.Logger) gin.HandlerFunc {
	var store rateli.Store
	if redisClient != nil {
		store = rateli.RedisStore(&rateli.RedisOptions{
			RedisClient: redisClient,
			Rate:        cfg.RateLimit.Rate,
			Limit:       cfg.RateLimit.Limit,
		})
	} else {
		store = rateli.InMemoryStore(&rateli.InMemoryOptions{
			Rate:  cfg.RateLimit.Rate,
			Limit: cfg.RateLimit.Limit,
		})
	}

	return rateli.RateLimiter(store, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			log.Warn("Rate limit exceeded",
				zap.String("client_ip", c.ClientIP()),
				zap.Time("reset_time", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.JSON(http.StatusTooManyRequests, handler.APIError{
				Message: "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
			})
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}

// setupPostgres connects to PostgreSQL, retrying while the database starts.
func setupPostgres(ctx context.Context, cfg *config.Config, log *zap.Logger) (*pgxpool.Pool, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		pool, err := database.Connect(ctx, cfg.Database, log)
		if err == nil {
			return pool, nil
		}
		lastErr = err
		log.Warn("PostgreSQL connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", maxRetries, lastErr)
}

// setupRedis creates the Redis client and waits for a successful ping.
func setupRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := client.Ping(pingCtx).Result()
		cancel()
		if err == nil {
			log.Info("Connected to Redis", zap.String("addr", opts.Addr), zap.Int("attempt", attempt))
			return client, nil
		}

		client.Close()
		lastErr = err
		log.Warn("Redis ping failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", maxRetries, lastErr)
}

// connectRabbitMQ dials RabbitMQ with retries and logs unexpected closes.
func connectRabbitMQ(rawURL string, log *zap.Logger) (*amqp.Connection, error) {
	log.Info("Connecting to RabbitMQ", zap.String("url", maskURL(rawURL)))

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		conn, err := amqp.Dial(rawURL)
		if err == nil {
			log.Info("Connected to RabbitMQ", zap.Int("attempt", attempt))
			go func() {
				closeErr := <-conn.NotifyClose(make(chan *amqp.Error, 1))
				if closeErr != nil {
					log.Error("RabbitMQ connection closed unexpectedly", zap.Error(closeErr))
				}
			}()
			return conn, nil
		}
		lastErr = err
		log.Warn("RabbitMQ connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, lastErr)
}

// maskURL hides the password of a connection URL for logging.
func maskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}
