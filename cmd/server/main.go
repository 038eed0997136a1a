package main

import (
	"context"
	"log"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/teamboard/api/handler"
	"github.com/fastygo/teamboard/internal/config"
	kafkaInfra "github.com/fastygo/teamboard/internal/infrastructure/kafka"
	"github.com/fastygo/teamboard/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/teamboard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/teamboard/internal/infrastructure/redis"
	"github.com/fastygo/teamboard/internal/middleware"
	"github.com/fastygo/teamboard/internal/router"
	"github.com/fastygo/teamboard/internal/services"
	"github.com/fastygo/teamboard/internal/services/lifecycle"
	"github.com/fastygo/teamboard/pkg/httpcontext"
	"github.com/fastygo/teamboard/pkg/logger"
	"github.com/fastygo/teamboard/pkg/token"
	"github.com/fastygo/teamboard/pkg/translator"
	"github.com/fastygo/teamboard/repository"
	boltRepo "github.com/fastygo/teamboard/repository/bolt"
	"github.com/fastygo/teamboard/repository/memory"
	"github.com/fastygo/teamboard/repository/postgres"
	redisRepo "github.com/fastygo/teamboard/repository/redis"
	"github.com/fastygo/teamboard/usecase"
	activityUC "github.com/fastygo/teamboard/usecase/activity"
	authUC "github.com/fastygo/teamboard/usecase/auth"
	maintenanceUC "github.com/fastygo/teamboard/usecase/maintenance"
	taskUC "github.com/fastygo/teamboard/usecase/task"
	teamUC "github.com/fastygo/teamboard/usecase/team"
	userUC "github.com/fastygo/teamboard/usecase/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Service:     cfg.AppName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	store := openStore(appCtx, cfg, zapLogger)
	manager.RegisterCloser("store", store)

	checks := []monitor.Check{{Name: monitor.ComponentStore, Required: true, Probe: store.Ping}}

	var (
		sessions repository.SessionRepository
		attempts repository.AttemptRepository
	)
	switch cfg.Sessions.Driver {
	case config.DriverRedis:
		redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.RegisterCloser("redis", redisClient)
		sessions = redisRepo.NewSessionRepository(redisClient, cfg.Sessions.TTL)
		attempts = redisRepo.NewAttemptRepository(redisClient)
		checks = append(checks, monitor.Check{Name: monitor.ComponentRedis, Required: true, Probe: redisInfra.Probe(redisClient)})
	default:
		sessions = memory.NewSessionRepository(cfg.Sessions.TTL)
		attempts = memory.NewAttemptRepository()
	}

	var publisher usecase.ActivityPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkaInfra.NewProducer(cfg.Kafka, zapLogger)
		if err != nil {
			zapLogger.Fatal("kafka producer failed", zap.Error(err))
		}
		manager.Register("kafka", func(ctx context.Context) error {
			if err := producer.Flush(ctx); err != nil {
				zapLogger.Warn("kafka flush failed", zap.Error(err))
			}
			producer.Close()
			return nil
		})
		publisher = services.NewActivityPublisher(producer, cfg.Kafka.Topic, zapLogger)
		checks = append(checks, monitor.Check{Name: monitor.ComponentKafka, Probe: kafkaInfra.Probe(producer)})
	}

	mon := monitor.New(cfg.Monitor.Interval, zapLogger, checks...)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	issuer, err := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		zapLogger.Fatal("token issuer failed", zap.Error(err))
	}

	tr, err := translator.New(zapLogger)
	if err != nil {
		zapLogger.Fatal("translations failed to load", zap.Error(err))
	}

	journal := usecase.NewJournal(store, publisher, zapLogger, usecase.WithActivityLimit(cfg.Views.ActivityLimit))

	authUseCase := authUC.New(store, sessions, attempts, issuer, authUC.Config{
		MaxAttempts:   cfg.Auth.MaxAttempts,
		AttemptWindow: cfg.Auth.AttemptWindow,
		SessionTTL:    cfg.Sessions.TTL,
	}, zapLogger)
	userUseCase := userUC.New(journal, zapLogger)
	taskUseCase := taskUC.New(journal, cfg.Views.PageSize, zapLogger)
	teamUseCase := teamUC.New(journal, zapLogger)
	activityUseCase := activityUC.New(journal, cfg.Views.PageSize, zapLogger)
	maintenanceUseCase := maintenanceUC.New(journal, zapLogger)

	if cfg.Auth.AdminPassword != "" {
		if _, err := userUseCase.Bootstrap(appCtx, userUC.CreateInput{
			Username: cfg.Auth.AdminUsername,
			Email:    cfg.Auth.AdminEmail,
			Password: cfg.Auth.AdminPassword,
		}); err != nil {
			zapLogger.Fatal("bootstrap administrator failed", zap.Error(err))
		}
	}

	if cfg.Repair.Enabled {
		scheduler, err := services.NewRepairScheduler(maintenanceUseCase, mon, zapLogger, services.SchedulerConfig{
			Interval: cfg.Repair.Interval,
		})
		if err != nil {
			zapLogger.Fatal("repair scheduler failed", zap.Error(err))
		}
		scheduler.Start()
		manager.Register("repair_scheduler", func(ctx context.Context) error {
			scheduler.Stop(ctx)
			return nil
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:        apiHandler.NewAuthHandler(authUseCase, ctxAdapter, tr, zapLogger),
		User:        apiHandler.NewUserHandler(userUseCase, ctxAdapter, tr, zapLogger),
		Task:        apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, tr, zapLogger),
		Team:        apiHandler.NewTeamHandler(teamUseCase, ctxAdapter, tr, zapLogger),
		Activity:    apiHandler.NewActivityHandler(activityUseCase, ctxAdapter, tr, zapLogger),
		Maintenance: apiHandler.NewMaintenanceHandler(maintenanceUseCase, ctxAdapter, tr, zapLogger),
		Health:      apiHandler.NewHealthHandler(mon, ctxAdapter, tr, zapLogger),
	}

	authMiddleware := middleware.Auth(authUseCase, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		MaxRequestBodySize: 16 << 20,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("sessions", cfg.Sessions.Driver),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) repository.Store {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		return postgres.NewStore(pool)
	case config.DriverBolt:
		store, err := boltRepo.Open(cfg.Storage.BoltPath, cfg.Storage.BoltBucket)
		if err != nil {
			zapLogger.Fatal("failed to open bolt store", zap.Error(err))
		}
		zapLogger.Info("bolt store opened", zap.String("path", cfg.Storage.BoltPath))
		return store
	default:
		zapLogger.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore()
	}
}

var _ services.Repairer = (*maintenanceUC.UseCase)(nil)
var _ services.Producer = (*kgo.Client)(nil)
