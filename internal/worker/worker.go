package worker

import (
    "context"
    "encoding/json"

    "github.com/hibiken/asynq"
    "go.uber.org/zap"

    "github.com/d60-Lab/ticket-queue/internal/service"
    "github.com/d60-Lab/ticket-queue/pkg/logger"
)

// Handlers 后台任务处理器：offer 定点回收 + 周期全量清扫
type Handlers struct {
    reclaimer service.ReclaimerService
}

func NewHandlers(reclaimer service.ReclaimerService) *Handlers {
    return &Handlers{reclaimer: reclaimer}
}

func (h *Handlers) HandleOfferExpiry(ctx context.Context, t *asynq.Task) error {
    var payload OfferExpiryPayload
    if err := json.Unmarshal(t.Payload(), &payload); err != nil {
        return err
    }
    _, err := h.reclaimer.ReclaimExpired(ctx, payload.EventID)
    return err
}

func (h *Handlers) HandleQueueSweep(ctx context.Context, _ *asynq.Task) error {
    return h.reclaimer.SweepAll(ctx)
}

// Run 启动 asynq server 与周期清扫调度，阻塞直至出错
func Run(redisOpt asynq.RedisClientOpt, handlers *Handlers, sweepCron string) error {
    if sweepCron == "" {
        sweepCron = "*/1 * * * *"
    }

    srv := asynq.NewServer(
        redisOpt,
        asynq.Config{
            Concurrency: 10,
            Queues: map[string]int{
                "critical": 6,
                "default":  3,
                "low":      1,
            },
        },
    )

    mux := asynq.NewServeMux()
    mux.HandleFunc(TypeOfferExpiry, handlers.HandleOfferExpiry)
    mux.HandleFunc(TypeQueueSweep, handlers.HandleQueueSweep)

    scheduler := asynq.NewScheduler(redisOpt, nil)
    if _, err := scheduler.Register(sweepCron, asynq.NewTask(TypeQueueSweep, nil)); err != nil {
        return err
    }
    go func() {
        if err := scheduler.Run(); err != nil {
            logger.Error("asynq scheduler exited", zap.Error(err))
        }
    }()

    return srv.Run(mux)
}
