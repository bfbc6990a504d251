package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/aurelia-gems/storefront/docs"
	adminhttp "github.com/aurelia-gems/storefront/internal/admin/delivery/http"
	admindomain "github.com/aurelia-gems/storefront/internal/admin/domain"
	adminstore "github.com/aurelia-gems/storefront/internal/admin/store"
	"github.com/aurelia-gems/storefront/internal/catalog"
	httpDelivery "github.com/aurelia-gems/storefront/internal/catalog/delivery/http"
	"github.com/aurelia-gems/storefront/internal/catalog/repository"
	"github.com/aurelia-gems/storefront/internal/catalog/usecase/command"
	"github.com/aurelia-gems/storefront/internal/config"
	"github.com/aurelia-gems/storefront/internal/upload"
	"github.com/aurelia-gems/storefront/kafka"
	"github.com/aurelia-gems/storefront/pkg/auth"
	"github.com/aurelia-gems/storefront/pkg/database"
	"github.com/aurelia-gems/storefront/pkg/logger"
	"github.com/aurelia-gems/storefront/pkg/tracing"
)

const serviceName = "storefront-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not initialized yet, fail on stderr.
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(serviceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting storefront service")

	// Initialize tracing
	tp, err := tracing.InitTracer(serviceName, cfg.JaegerEndpoint)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Warn().Err(err).Msg("Failed to shut down tracer")
			}
		}()
	}

	// Connect to database
	db, err := database.NewGormConnection(cfg.DB)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := repository.NewGormCatalogRepository(db).AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Session store: Redis when configured, in-memory otherwise
	var sessionStore admindomain.SessionStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		sessionStore = adminstore.NewRedisSessionStore(redisClient)
		logger.Logger.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis session store")
	} else {
		sessionStore = adminstore.NewMemorySessionStore()
		logger.Logger.Info().Msg("Using in-memory session store")
	}

	// Admin session machine
	verifier := auth.NewBcryptVerifier(cfg.AdminIdentifier, cfg.AdminPasswordHash)
	machine := admindomain.NewMachine(context.Background(), verifier, sessionStore, cfg.SessionLimits)

	tokens, err := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize token manager")
	}

	// Kafka eventing is optional
	var publisher command.EventPublisher
	var kafkaPublisher *kafka.Publisher
	var kafkaConsumer *kafka.Consumer
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err = kafka.NewPublisher(cfg.KafkaBrokers)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka publisher")
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher

		kafkaConsumer, err = kafka.NewConsumer(cfg.KafkaBrokers, serviceName)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
		}
		defer kafkaConsumer.Close()

		logger.Logger.Info().Strs("brokers", cfg.KafkaBrokers).Msg("Kafka eventing enabled")
	}

	// Image uploads
	storage, err := upload.NewLocalStorage(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize upload storage")
	}
	uploads := upload.NewService(storage)

	// Initialize catalog with Wire DI
	adminMW := httpDelivery.AdminMiddleware(tokens, machine)
	app, err := catalog.InitializeApp(db, cfg.CacheTTL, machine, publisher, uploads, adminMW)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize catalog")
	}

	// Prime the catalog cache; first requests fall back to a live
	// fetch if this fails.
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := app.Cache.Refresh(ctx); err != nil {
			logger.Logger.Warn().Err(err).Msg("Initial catalog fetch failed")
		}
		cancel()
	}

	// Other service instances invalidate our snapshot through catalog events
	if kafkaConsumer != nil {
		invalidate := func(ctx context.Context, event kafka.ProductEvent) error {
			logger.Info(ctx).
				Str("event_type", event.EventType).
				Str("product_id", event.ProductID).
				Msg("Catalog event received, invalidating cache")
			app.Cache.Invalidate()
			return nil
		}
		kafkaConsumer.RegisterHandler(kafka.EventTypeProductCreated, invalidate)
		kafkaConsumer.RegisterHandler(kafka.EventTypeProductUpdated, invalidate)
		kafkaConsumer.RegisterHandler(kafka.EventTypeProductDeleted, invalidate)

		go func() {
			if err := kafkaConsumer.Start(context.Background()); err != nil {
				logger.Logger.Error().Err(err).Msg("Kafka consumer stopped")
			}
		}()
	}

	// Background timers: periodic catalog refresh and session sweep
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every "+cfg.RefreshInterval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.Cache.Refresh(ctx); err != nil {
			logger.Logger.Warn().Err(err).Msg("Scheduled catalog refresh failed")
		}
	}); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to schedule catalog refresh")
	}
	if _, err := scheduler.AddFunc("@every 1m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Drives inactivity and lockout expiry even when no request
		// arrives.
		_ = machine.Check(ctx)
	}); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to schedule session sweep")
	}
	scheduler.Start()
	defer scheduler.Stop()

	adminHandler := adminhttp.NewAdminHandler(machine, tokens)

	// Start HTTP server
	server := buildHTTPServer(app.Handler, adminHandler, sqlDB, storage, cfg)

	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger_endpoint", "/swagger/index.html").
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

func buildHTTPServer(
	handler *httpDelivery.CatalogHandler,
	adminHandler *adminhttp.AdminHandler,
	db *sql.DB,
	storage *upload.LocalStorage,
	cfg *config.Config,
) *http.Server {
	router := mux.NewRouter()

	// Register routes
	handler.RegisterRoutes(router)
	adminHandler.RegisterRoutes(router)

	// Health check endpoint
	handler.RegisterHealthCheck(router, db)

	// Swagger UI
	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Uploaded images are served from local storage
	router.PathPrefix(cfg.UploadBaseURL + "/").Handler(
		http.StripPrefix(cfg.UploadBaseURL+"/", http.FileServer(http.Dir(storage.Dir()))),
	)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// Wrap with OpenTelemetry HTTP instrumentation
	instrumented := otelhttp.NewHandler(c.Handler(router), "storefront-http")

	return &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: instrumented,
	}
}
