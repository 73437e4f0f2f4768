package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"flagpost/internal/config"
	"flagpost/internal/constants"
	"flagpost/internal/logger"
	"flagpost/internal/management"
	"flagpost/internal/profile"
	"flagpost/pkg/bootstrap"
	"flagpost/pkg/health"
	"flagpost/pkg/metrics"
	"flagpost/pkg/middleware"
	"flagpost/pkg/migrations"
	"flagpost/pkg/ratelimit"
	"flagpost/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	mongoClient    *mongo.Client
	profiles       profile.Repository
	limiter        *ratelimit.Store
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(constants.ServiceManagement)
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceManagement)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := a.InitBroker(constants.ServiceManagement, false); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	metrics.RegisterManagementMetrics()
	metrics.RegisterBrokerMetrics()

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

	mongoClient, err := a.dbConnector.InitMongoDB(initCtx)
	if err != nil {
		a.Logger.WarnwCtx(ctx, "MongoDB connection failed, continuing without user profiles", "error", err)
		return nil
	}
	if mongoClient == nil {
		return nil
	}
	a.mongoClient = mongoClient

	dbName := a.Config.Database.MongoDB.Database
	if dbName == "" {
		dbName = constants.DefaultMongoDBName
	}
	mongoDB := mongoClient.Database(dbName)
	if err := migrations.EnsureProfileIndexes(initCtx, mongoDB); err != nil {
		return err
	}
	a.profiles = profile.NewRepository(mongoDB)
	return nil
}

func (a *App) newService() management.Service {
	opts := []management.ServiceOption{
		management.WithLogger(a.Logger),
		management.WithAudit(management.NewAuditLogger(a.db)),
	}

	if topic := a.Config.Broker.Kafka.ConfigUpdateTopic; a.Config.Broker.Enabled() && topic != "" {
		opts = append(opts, management.WithCatalogEvents(management.NewCatalogEventProducer(a.Producer, topic)))
		a.Logger.Infow("Catalog event producer initialized", "topic", topic)
	}

	return management.NewService(management.NewRepository(a.db), opts...)
}

func (a *App) initHTTPServer() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceManagement))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(tracing.TraceIDMiddleware())

	healthRegistry := health.NewCheckerRegistry(constants.ServiceManagement)
	healthRegistry.RegisterCritical(health.NewPostgreSQLChecker(a.db, constants.ServiceManagement))
	if a.mongoClient != nil {
		healthRegistry.RegisterOptional(health.NewMongoDBChecker(a.mongoClient))
	}
	if a.Config.Broker.Enabled() {
		healthRegistry.RegisterOptional(health.NewKafkaChecker(a.Config.Broker.Kafka.Brokers))
	}

	router.GET("/health", healthRegistry.Handler())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("")
	api.Use(middleware.ActorMiddleware())
	if a.Config.Management.RateLimit.Enabled {
		limitCfg := ratelimit.FromSettings(a.Config.Management.RateLimit)
		a.limiter = ratelimit.NewStore(limitCfg)
		api.Use(a.limiter.Middleware())
		a.Logger.Infow("Rate limiting enabled", "rps", limitCfg.RPS, "burst", limitCfg.Burst)
	}

	management.NewHandler(a.newService(), a.Logger).RegisterRoutes(api)
	if a.profiles != nil {
		profile.NewHandler(a.profiles, a.Logger).RegisterRoutes(api)
	}

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
		a.Logger.InfowCtx(ctx, "Server listening", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

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
				errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, nil, a.db, a.mongoClient)...)
		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
