package service

import (
    "context"
    "time"

    "go.uber.org/zap"
    "gorm.io/gorm"

    "github.com/d60-Lab/ticket-queue/internal/model"
    "github.com/d60-Lab/ticket-queue/internal/repository"
    "github.com/d60-Lab/ticket-queue/pkg/logger"
)

// sideEffects 收集事务内产生、提交成功后才执行的旁路动作
type sideEffects struct {
    updates   []model.QueueUpdate
    schedules []offerSchedule
}

type offerSchedule struct {
    eventID string
    at      time.Time
}

func (fx *sideEffects) update(u model.QueueUpdate) {
    fx.updates = append(fx.updates, u)
}

func (fx *sideEffects) schedule(eventID string, at time.Time) {
    fx.schedules = append(fx.schedules, offerSchedule{eventID: eventID, at: at})
}

// emit 提交后下发副作用；失败只记日志，清扫任务会兜底
func (fx *sideEffects) emit(ctx context.Context, cfg Config) {
    if cfg.Scheduler != nil {
        for _, s := range fx.schedules {
            if err := cfg.Scheduler.ScheduleOfferExpiry(ctx, s.eventID, s.at); err != nil {
                logger.Warn("schedule offer expiry failed",
                    zap.String("event", s.eventID), zap.Error(err))
            }
        }
    }
    if cfg.Publisher != nil {
        for _, u := range fx.updates {
            cfg.Publisher.PublishUpdate(ctx, u)
        }
    }
}

// availableLocked 容量账本：available = total - sold - 活跃 offer 数。
// 只能在活动事务内调用，事务外的读不得据此做写入决策。
func availableLocked(ctx context.Context, tx *gorm.DB, ev *model.Event, now time.Time) (int, error) {
    offers, err := repository.NewQueueRepository(tx).CountActiveOffers(ctx, ev.ID, now)
    if err != nil {
        return 0, err
    }
    return ev.TotalTickets - ev.SoldCount - int(offers), nil
}

// reclaimLocked 把所有过期 offer 置为 expired 并释放其容量；幂等
func reclaimLocked(ctx context.Context, tx *gorm.DB, ev *model.Event, now time.Time, fx *sideEffects) (int, error) {
    queueRepo := repository.NewQueueRepository(tx)
    expired, err := queueRepo.ListExpiredOffers(ctx, ev.ID, now)
    if err != nil {
        return 0, err
    }
    for _, e := range expired {
        e.Status = model.EntryStatusExpired
        e.OfferExpiresAt = nil
        if err := queueRepo.Save(ctx, e); err != nil {
            return 0, err
        }
        fx.update(model.QueueUpdate{
            EventID:   ev.ID,
            UserID:    e.UserID,
            Type:      model.UpdateOfferExpired,
            Timestamp: now,
        })
    }
    return len(expired), nil
}

// promoteLocked 按 (position, createdAt) 先来先得，把等待条目晋升填满空闲容量
func promoteLocked(ctx context.Context, tx *gorm.DB, ev *model.Event, now time.Time, ttl time.Duration, fx *sideEffects) error {
    avail, err := availableLocked(ctx, tx, ev, now)
    if err != nil {
        return err
    }
    if avail <= 0 {
        return nil
    }
    queueRepo := repository.NewQueueRepository(tx)
    next, err := queueRepo.NextWaiting(ctx, ev.ID, avail)
    if err != nil {
        return err
    }
    for _, e := range next {
        deadline := now.Add(ttl)
        e.Status = model.EntryStatusOffered
        e.OfferExpiresAt = &deadline
        if err := queueRepo.Save(ctx, e); err != nil {
            return err
        }
        fx.update(model.QueueUpdate{
            EventID:        ev.ID,
            UserID:         e.UserID,
            Type:           model.UpdateOfferGranted,
            OfferExpiresAt: &deadline,
            Timestamp:      now,
        })
        fx.schedule(ev.ID, deadline)
    }
    return nil
}
