package service

import (
    "context"

    "go.uber.org/zap"
    "gorm.io/gorm"

    "github.com/d60-Lab/ticket-queue/internal/model"
    "github.com/d60-Lab/ticket-queue/internal/repository"
    "github.com/d60-Lab/ticket-queue/pkg/clock"
    "github.com/d60-Lab/ticket-queue/pkg/logger"
)

// ReclaimerService 过期回收：把过期 offer 的容量还给账本并晋升下一位
type ReclaimerService interface {
    // ReclaimExpired 单个活动的回收 + 晋升，一个原子步骤内完成；幂等
    ReclaimExpired(ctx context.Context, eventID string) (int, error)
    // SweepAll 主动清扫所有存在过期 offer 的活动（定时任务入口）
    SweepAll(ctx context.Context) error
}

type reclaimerService struct {
    db  *gorm.DB
    clk clock.Clock
    cfg Config
}

func NewReclaimerService(db *gorm.DB, clk clock.Clock, cfg Config) ReclaimerService {
    return &reclaimerService{db: db, clk: clk, cfg: cfg.withDefaults()}
}

func (s *reclaimerService) ReclaimExpired(ctx context.Context, eventID string) (int, error) {
    now := s.clk.Now()
    var (
        reclaimed int
        fx        sideEffects
    )
    err := runEventTxn(ctx, s.db, eventID, s.cfg.MaxAttempts, func(tx *gorm.DB, ev *model.Event) error {
        n, err := reclaimLocked(ctx, tx, ev, now, &fx)
        if err != nil {
            return err
        }
        reclaimed = n
        return promoteLocked(ctx, tx, ev, now, s.cfg.OfferTTL, &fx)
    })
    if err != nil {
        return 0, err
    }
    fx.emit(ctx, s.cfg)
    if reclaimed > 0 {
        logger.Info("reclaimed expired offers",
            zap.String("event", eventID), zap.Int("count", reclaimed))
    }
    return reclaimed, nil
}

func (s *reclaimerService) SweepAll(ctx context.Context) error {
    now := s.clk.Now()
    ids, err := repository.NewQueueRepository(s.db).EventIDsWithExpiredOffers(ctx, now)
    if err != nil {
        return err
    }
    for _, id := range ids {
        if _, err := s.ReclaimExpired(ctx, id); err != nil {
            // 单个活动失败不中断整轮清扫
            logger.Error("sweep reclaim failed", zap.String("event", id), zap.Error(err))
        }
    }
    return nil
}
