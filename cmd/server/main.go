// @title ticket-queue API
// @version 1.0
// @description 票务预约队列与容量分配服务
package main

import (
    "context"
    "fmt"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/getsentry/sentry-go"
    "github.com/hibiken/asynq"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/d60-Lab/ticket-queue/config"
    "github.com/d60-Lab/ticket-queue/internal/api"
    "github.com/d60-Lab/ticket-queue/internal/api/handler"
    "github.com/d60-Lab/ticket-queue/internal/cache"
    "github.com/d60-Lab/ticket-queue/internal/notify"
    "github.com/d60-Lab/ticket-queue/internal/repository"
    "github.com/d60-Lab/ticket-queue/internal/service"
    "github.com/d60-Lab/ticket-queue/internal/worker"
    "github.com/d60-Lab/ticket-queue/pkg/clock"
    "github.com/d60-Lab/ticket-queue/pkg/database"
    "github.com/d60-Lab/ticket-queue/pkg/logger"
    "github.com/d60-Lab/ticket-queue/pkg/tracing"
)

func main() {
    cfg, err := config.Load()
    if err != nil {
        panic(err)
    }
    if err := logger.Init(cfg.Env); err != nil {
        panic(err)
    }
    defer logger.Sync()

    ctx := context.Background()

    if cfg.Observability.SentryDSN != "" {
        if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Observability.SentryDSN, Environment: cfg.Env}); err != nil {
            logger.Warn("sentry init failed", zap.Error(err))
        }
        defer sentry.Flush(2 * time.Second)
    }

    shutdownTracing, err := tracing.Init(ctx, "ticket-queue", cfg.Observability.OTLPEndpoint)
    if err != nil {
        logger.Error("tracing init failed", zap.Error(err))
        os.Exit(1)
    }
    defer func() { _ = shutdownTracing(ctx) }()

    db, err := database.InitDB(cfg)
    if err != nil {
        logger.Error("database init failed", zap.Error(err))
        os.Exit(1)
    }

    rdb := redis.NewClient(&redis.Options{
        Addr:     cfg.Redis.Addr,
        Password: cfg.Redis.Password,
        DB:       cfg.Redis.DB,
    })
    redisOpt := asynq.RedisClientOpt{
        Addr:     cfg.Redis.Addr,
        Password: cfg.Redis.Password,
        DB:       cfg.Redis.DB,
    }

    publisher := notify.NewPublisher(rdb, 10000)
    stopPublisher := publisher.Start(2)
    asynqClient := worker.NewClient(redisOpt)
    defer asynqClient.Close()

    svcCfg := service.Config{
        OfferTTL:    cfg.Queue.OfferTTL,
        MaxAttempts: cfg.Queue.MaxAttempts,
        Scheduler:   asynqClient,
        Publisher:   publisher,
    }
    clk := clock.NewSystem()
    queueSvc := service.NewQueueService(db, clk, svcCfg)
    reclaimer := service.NewReclaimerService(db, clk, svcCfg)
    finalizer := service.NewFinalizerService(db, clk, svcCfg)

    statusCache := cache.NewStatusCache(rdb, cfg.Queue.StatusCacheTTL)
    h := handler.New(queueSvc, finalizer,
        repository.NewEventRepository(db),
        repository.NewTicketRepository(db),
        statusCache)

    // 后台：定点回收 + 周期清扫
    sweepSpec := fmt.Sprintf("@every %s", cfg.Queue.SweepInterval)
    go func() {
        if err := worker.Run(redisOpt, worker.NewHandlers(reclaimer), sweepSpec); err != nil {
            logger.Error("asynq worker exited", zap.Error(err))
        }
    }()

    srv := &http.Server{
        Addr:    cfg.Server.Addr,
        Handler: api.NewRouter(cfg, h),
    }
    go func() {
        logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            logger.Error("server exited", zap.Error(err))
            os.Exit(1)
        }
    }()

    quit := make(chan os.Signal, 1)
    signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
    <-quit
    logger.Info("shutting down")

    shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()
    _ = srv.Shutdown(shutdownCtx)
    _ = stopPublisher(shutdownCtx)
}
