package service

import (
    "context"
    "errors"
    "time"

    "go.uber.org/zap"
    "gorm.io/gorm"

    "github.com/d60-Lab/ticket-queue/internal/model"
    "github.com/d60-Lab/ticket-queue/internal/repository"
    "github.com/d60-Lab/ticket-queue/pkg/logger"
)

const retryBackoff = 5 * time.Millisecond

// ExpiryScheduler 在 offer 到期时刻触发回收（asynq 延时任务）
type ExpiryScheduler interface {
    ScheduleOfferExpiry(ctx context.Context, eventID string, at time.Time) error
}

// UpdatePublisher 对外广播队列变更（Redis Pub/Sub）
type UpdatePublisher interface {
    PublishUpdate(ctx context.Context, update model.QueueUpdate)
}

// Config 核心服务共享的运行参数与旁路依赖，Scheduler/Publisher 可为 nil
type Config struct {
    OfferTTL    time.Duration
    MaxAttempts int
    Scheduler   ExpiryScheduler
    Publisher   UpdatePublisher
}

func (c Config) withDefaults() Config {
    if c.OfferTTL <= 0 {
        c.OfferTTL = 30 * time.Minute
    }
    if c.MaxAttempts <= 0 {
        c.MaxAttempts = 5
    }
    return c
}

// runEventTxn 活动级原子操作：事务内执行 fn 并以版本 CAS 提交，
// 冲突时整体重做，所有容量相关写入都必须走这里
func runEventTxn(ctx context.Context, db *gorm.DB, eventID string, maxAttempts int, fn func(tx *gorm.DB, ev *model.Event) error) error {
    for attempt := 0; attempt < maxAttempts; attempt++ {
        err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
            eventRepo := repository.NewEventRepository(tx)
            ev, err := eventRepo.Get(ctx, eventID)
            if err != nil {
                if errors.Is(err, gorm.ErrRecordNotFound) {
                    return ErrEventNotFound
                }
                return err
            }
            if err := fn(tx, ev); err != nil {
                return err
            }
            return eventRepo.BumpVersion(ctx, eventID, ev.Version)
        })
        if errors.Is(err, repository.ErrVersionConflict) {
            logger.Debug("event txn conflict, retrying",
                zap.String("event", eventID), zap.Int("attempt", attempt+1))
            time.Sleep(time.Duration(attempt+1) * retryBackoff)
            continue
        }
        return err
    }
    return ErrConcurrentModification
}
