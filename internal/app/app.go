package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/adapter/cache"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/adapter/client/propertyapi"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/adapter/email"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/adapter/memcached"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/adapter/messaging/rabbitmq"
	redisadapter "github.com/Abdurahmanit/GroupProject/property-portal/internal/adapter/redis"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/port/httpapi"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/validation"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/usecase"
)

const cacheKeyPrefix = "portal:"

type App struct {
	cfg            *config.Config
	log            logger.Logger
	server         *httpapi.Server
	metrics        *metrics.MetricsManager
	propertyCache  *cache.PropertyCache
	redisClient    *redis.Client
	natsConn       *natsgo.Conn
	consumer       *rabbitmq.Consumer
	tracerProvider *sdktrace.TracerProvider
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Info("Logger initialized")
	appLogger.Infof("Configuration loaded: Env=%s, HTTP Port: %s, Property API: %s", cfg.Env, cfg.HTTPServer.Port, cfg.PropertyAPI.BaseURL)

	a := &App{cfg: cfg, log: appLogger}

	tp, err := tracer.InitTracer(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	a.tracerProvider = tp

	a.metrics = metrics.NewMetricsManager("property_portal")

	remote, err := a.initRemoteCache(ctx)
	if err != nil {
		return nil, err
	}
	a.propertyCache = cache.New(cache.Config{
		LocalMaxSize: cfg.Cache.LocalMaxSize,
		LocalTTL:     cfg.Cache.LocalTTL,
		SearchTTL:    cfg.Cache.SearchTTL,
		PropertyTTL:  cfg.Cache.PropertyTTL,
	}, remote, appLogger, a.metrics)
	appLogger.Info("Property cache initialized")

	var publisher usecase.EventPublisher
	if cfg.NATS.URL != "" {
		appLogger.Info("Connecting to NATS...")
		a.natsConn, err = nats.NewConnection(cfg.NATS, appLogger)
		if err != nil {
			a.closeResources()
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		natsPublisher, err := nats.NewPublisher(a.natsConn, appLogger)
		if err != nil {
			a.closeResources()
			return nil, err
		}
		publisher = natsPublisher
		appLogger.Info("NATS publisher initialized")
	} else {
		appLogger.Info("NATS URL not configured, property events will not be published")
	}

	var sender email.EmailSender
	if cfg.SMTP.Host != "" {
		sender, err = email.NewSMTPSender(cfg.SMTP, appLogger)
		if err != nil {
			a.closeResources()
			return nil, fmt.Errorf("failed to initialize SMTP sender: %w", err)
		}
		appLogger.Infof("SMTP sender initialized for %s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	} else {
		sender = email.NewLogSender(appLogger)
		appLogger.Warn("SMTP host not configured, contact messages will only be logged")
	}

	apiClient := propertyapi.New(propertyapi.Config{
		BaseURL: cfg.PropertyAPI.BaseURL,
		Timeout: cfg.PropertyAPI.Timeout,
	}, appLogger)

	validator := validation.New()
	propertyUC := usecase.NewPropertyUsecase(apiClient, a.propertyCache, validator, publisher, a.metrics, appLogger)
	contactUC := usecase.NewContactUsecase(sender, validator, cfg.Contact.Inbox, a.metrics, appLogger)

	if cfg.RabbitMQ.URL != "" {
		a.consumer, err = rabbitmq.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, a.propertyCache, appLogger)
		if err != nil {
			a.closeResources()
			return nil, fmt.Errorf("failed to initialize RabbitMQ consumer: %w", err)
		}
		appLogger.Infof("RabbitMQ consumer initialized on queue %s", cfg.RabbitMQ.Queue)
	}

	router := httpapi.NewRouter(
		httpapi.NewPropertyHandler(propertyUC, appLogger),
		httpapi.NewContactHandler(contactUC, appLogger),
		a.metrics,
		appLogger,
	)
	a.server = httpapi.NewServer(cfg.HTTPServer, router, appLogger)
	appLogger.Info("HTTP server instance created")

	return a, nil
}

// initRemoteCache connects the shared cache tier chosen by cache.backend.
// A nil Remote leaves the cache process-local.
func (a *App) initRemoteCache(ctx context.Context) (cache.Remote, error) {
	switch strings.ToLower(a.cfg.Cache.Backend) {
	case "redis":
		a.log.Info("Initializing Redis client...")
		client, err := redisadapter.NewClient(ctx, a.cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
		}
		a.redisClient = client
		a.log.Info("Redis client initialized successfully")
		return redisadapter.NewStore(client, cacheKeyPrefix), nil
	case "memcached":
		a.log.Info("Initializing memcached client...")
		client, err := memcached.NewClient(a.cfg.Memcached)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize memcached client: %w", err)
		}
		a.log.Info("Memcached client initialized successfully")
		return memcached.NewStore(client, cacheKeyPrefix), nil
	case "", "none":
		a.log.Info("No shared cache backend configured, using in-process cache only")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", a.cfg.Cache.Backend)
	}
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	go func() {
		if err := metrics.StartMetricsServer(a.cfg.Metrics.Port, a.log, a.metrics.Registry); err != nil {
			a.log.Errorf("Prometheus metrics server failed: %v", err)
		}
	}()

	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			a.log.Errorf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()
	a.log.Info("HTTP server started in a goroutine")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful+5*time.Second)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server graceful shutdown: %v", err)
	} else {
		a.log.Info("HTTP server stopped successfully")
	}

	a.closeResources()

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			a.log.Errorf("Error shutting down tracer provider: %v", err)
		}
	}

	a.log.Info("Application shut down successfully")
	_ = a.log.Sync()
}

func (a *App) closeResources() {
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.log.Errorf("Error closing RabbitMQ consumer: %v", err)
		} else {
			a.log.Info("RabbitMQ consumer closed successfully")
		}
	}

	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.log.Errorf("Error draining NATS connection: %v", err)
		} else {
			a.log.Info("NATS connection drained successfully")
		}
	}

	if a.propertyCache != nil {
		a.propertyCache.Close()
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		} else {
			a.log.Info("Redis client closed successfully")
		}
	}
}
