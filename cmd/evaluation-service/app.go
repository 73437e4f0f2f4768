package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"flagpost/internal/cache"
	"flagpost/internal/catalog"
	"flagpost/internal/catalogevents"
	"flagpost/internal/config"
	"flagpost/internal/constants"
	"flagpost/internal/evaluation"
	"flagpost/internal/logger"
	"flagpost/pkg/bootstrap"
	"flagpost/pkg/health"
	"flagpost/pkg/metrics"
	"flagpost/pkg/middleware"
	"flagpost/pkg/models"
	"flagpost/pkg/ratelimit"
	"flagpost/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	redisClient    *redis.Client
	resultCache    *cache.FeatureResultCache
	decisionEvents *evaluation.DecisionEvents
	eventsDone     chan struct{}
	service        *evaluation.Service
	limiter        *ratelimit.Store
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(constants.ServiceEvaluation)
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceEvaluation)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := a.InitBroker(constants.ServiceEvaluation, true); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	a.initService()

	metrics.RegisterEvaluationMetrics()
	metrics.RegisterBrokerMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	a.initHTTPServer()
	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	initCtx, cancel := context.WithTimeout(ctx, constants.DatabaseInitTimeout)
	defer cancel()

	db, err := a.dbConnector.InitPostgreSQL(initCtx)
	if err != nil {
		return err
	}
	a.db = db

	if !a.Config.Evaluation.Cache.Enabled {
		return nil
	}

	rdb, err := a.dbConnector.InitRedis(initCtx)
	if err != nil {
		a.Logger.WarnwCtx(ctx, "Redis unavailable, result cache disabled", "error", err)
		return nil
	}
	a.redisClient = rdb
	return nil
}

func (a *App) initService() {
	repo := catalog.NewResilientRepository(
		catalog.NewRepository(a.db),
		a.Config.Evaluation.CatalogRetry,
		a.Config.CircuitBreaker,
		constants.ServiceEvaluation,
		a.Logger,
	)

	var opts []evaluation.Option

	if a.redisClient != nil {
		cacheRepo := cache.NewCircuitBreakerRepository(cache.NewRepository(a.redisClient), a.Config.CircuitBreaker)
		a.resultCache = cache.NewFeatureResultCache(cacheRepo, a.Config.Evaluation.Cache.TTL(), a.Logger)
		opts = append(opts, evaluation.WithResultCache(a.resultCache))
		a.Logger.Infow("Feature result cache enabled", "ttl", a.Config.Evaluation.Cache.TTL())
	}

	topic := a.Config.Broker.Kafka.DecisionTopic
	if a.Config.Evaluation.DecisionEvents.Enabled && topic != "" {
		a.decisionEvents = evaluation.NewDecisionEvents(a.Producer, topic, a.Logger)
		opts = append(opts, evaluation.WithDecisionPublisher(a.decisionEvents))
		a.Logger.Infow("Decision events enabled", "topic", topic)
	}

	a.service = evaluation.NewService(repo, a.Logger, opts...)
}

func (a *App) initHTTPServer() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceEvaluation))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(tracing.TraceIDMiddleware())
	router.Use(middleware.CORSMiddleware(a.Config.CORS))

	healthRegistry := health.NewCheckerRegistry(constants.ServiceEvaluation)
	healthRegistry.RegisterCritical(health.NewPostgreSQLChecker(a.db, constants.ServiceEvaluation))
	if a.redisClient != nil {
		healthRegistry.RegisterOptional(health.NewRedisChecker(a.redisClient))
	}
	if a.Config.Broker.Enabled() {
		healthRegistry.RegisterOptional(health.NewKafkaChecker(a.Config.Broker.Kafka.Brokers))
	}

	router.GET("/health", healthRegistry.Handler())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("")
	if a.Config.Evaluation.RateLimit.Enabled {
		limitCfg := ratelimit.FromSettings(a.Config.Evaluation.RateLimit)
		a.limiter = ratelimit.NewStore(limitCfg)
		api.Use(a.limiter.Middleware())
		a.Logger.Infow("Rate limiting enabled", "rps", limitCfg.RPS, "burst", limitCfg.Burst)
	}

	evaluation.NewHandler(a.service, a.Logger).RegisterRoutes(api)

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeout(),
		WriteTimeout: a.Config.Server.WriteTimeout(),
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	if a.decisionEvents != nil {
		a.eventsDone = make(chan struct{})
		g.Go(func() error {
			defer close(a.eventsDone)
			a.decisionEvents.Run(gCtx)
			return nil
		})
	}

	if a.Consumer != nil {
		var invalidator catalogevents.Invalidator
		if a.resultCache != nil {
			invalidator = a.resultCache
		}
		eventHandler := catalogevents.NewHandler(invalidator, a.Logger)
		topic := a.Config.Broker.Kafka.ConfigUpdateTopic

		g.Go(func() error {
			a.Logger.InfowCtx(gCtx, "Starting catalog update consumer", "topic", topic)
			err := a.Consumer.Consume(gCtx, topic, func(cCtx context.Context, msg models.MessageEnvelope) error {
				return eventHandler.HandleCatalogUpdate(cCtx, msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		return a.Shutdown(context.Background())
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.limiter != nil {
			a.limiter.Stop()
		}

		if a.server != nil {
			shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("HTTP server shutdown error: %w", err))
			}
		}

		// Queued decision events must drain before the producer closes.
		if a.eventsDone != nil {
			select {
			case <-a.eventsDone:
			case <-time.After(constants.ShutdownTimeout + constants.EventPublishTimeout):
				errs = append(errs, errors.New("timed out waiting for decision events to flush"))
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.db, nil)...)
		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
