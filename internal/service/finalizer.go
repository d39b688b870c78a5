package service

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/d60-Lab/ticket-queue/internal/model"
    "github.com/d60-Lab/ticket-queue/internal/repository"
    "github.com/d60-Lab/ticket-queue/pkg/clock"
)

// Outcome finalize 的两种结局
type Outcome string

const (
    OutcomeCompleted Outcome = "completed"
    OutcomeReleased  Outcome = "released"
)

// FinalizerService 把 offer 原子地转成成交票或释放回容量池
type FinalizerService interface {
    Finalize(ctx context.Context, eventID, userID string, outcome Outcome) (*model.QueueEntry, error)
    // Release 用户主动取消，等价于 Finalize(released)；终态条目上为幂等 no-op
    Release(ctx context.Context, eventID, userID string) error
}

type finalizerService struct {
    db  *gorm.DB
    clk clock.Clock
    cfg Config
}

func NewFinalizerService(db *gorm.DB, clk clock.Clock, cfg Config) FinalizerService {
    return &finalizerService{db: db, clk: clk, cfg: cfg.withDefaults()}
}

// Finalize 前置条件：条目处于 offered 且未过期。completed 写入成交票并
// 永久消耗容量；released 立即把名额晋升给下一位等待者。重复调用同一
// 结局返回同一终态；相反结局被拒绝。并发双重 finalize 由版本 CAS 串行化。
func (s *finalizerService) Finalize(ctx context.Context, eventID, userID string, outcome Outcome) (*model.QueueEntry, error) {
    if outcome != OutcomeCompleted && outcome != OutcomeReleased {
        return nil, fmt.Errorf("unknown finalize outcome %q", outcome)
    }

    now := s.clk.Now()
    var (
        out   *model.QueueEntry
        opErr error
        fx    sideEffects
    )
    err := runEventTxn(ctx, s.db, eventID, s.cfg.MaxAttempts, func(tx *gorm.DB, ev *model.Event) error {
        // 先惰性回收：过期的 offer 在这里就地判死，绝不允许完成购买
        if _, err := reclaimLocked(ctx, tx, ev, now, &fx); err != nil {
            return err
        }

        queueRepo := repository.NewQueueRepository(tx)
        entry, err := queueRepo.Get(ctx, eventID, userID)
        if err != nil {
            if errors.Is(err, gorm.ErrRecordNotFound) {
                opErr = ErrEntryNotFound
                return nil
            }
            return err
        }

        out, opErr, err = s.applyLocked(ctx, tx, ev, entry, outcome, now, &fx)
        if err != nil {
            return err
        }
        // 无论本次结局如何，回收腾出的容量都要晋升下一位
        return promoteLocked(ctx, tx, ev, now, s.cfg.OfferTTL, &fx)
    })
    if err != nil {
        return nil, err
    }
    fx.emit(ctx, s.cfg)
    if opErr != nil {
        return nil, opErr
    }
    return out, nil
}

// applyLocked 状态机推进；返回 (终态条目, 业务错误, 基础设施错误)。
// 业务错误不回滚事务，惰性回收的结果仍然提交。
func (s *finalizerService) applyLocked(ctx context.Context, tx *gorm.DB, ev *model.Event, entry *model.QueueEntry, outcome Outcome, now time.Time, fx *sideEffects) (*model.QueueEntry, error, error) {
    queueRepo := repository.NewQueueRepository(tx)

    switch entry.Status {
    case model.EntryStatusPurchased:
        if outcome == OutcomeCompleted {
            return entry, nil, nil // 重复 finalize(completed)，幂等
        }
        return nil, ErrAlreadyFinalized, nil

    case model.EntryStatusReleased:
        if outcome == OutcomeReleased {
            return entry, nil, nil
        }
        return nil, ErrAlreadyFinalized, nil

    case model.EntryStatusExpired:
        if outcome == OutcomeReleased {
            return entry, nil, nil // 取消一个已死的 offer 是 no-op
        }
        return nil, ErrOfferExpired, nil

    case model.EntryStatusWaiting:
        if outcome == OutcomeCompleted {
            return nil, ErrNotOffered, nil
        }
        // 等待中的用户退出队列，后面的位次自动前移
        entry.Status = model.EntryStatusReleased
        if err := queueRepo.Save(ctx, entry); err != nil {
            return nil, nil, err
        }
        fx.update(model.QueueUpdate{
            EventID:   ev.ID,
            UserID:    entry.UserID,
            Type:      model.UpdateEntryReleased,
            Timestamp: now,
        })
        return entry, nil, nil

    case model.EntryStatusOffered:
        // reclaimLocked 已处理过期，这里的 offer 一定有效
        if outcome == OutcomeCompleted {
            entry.Status = model.EntryStatusPurchased
            entry.OfferExpiresAt = nil
            if err := queueRepo.Save(ctx, entry); err != nil {
                return nil, nil, err
            }
            ticket := &model.Ticket{
                ID:        uuid.New().String(),
                EventID:   ev.ID,
                UserID:    entry.UserID,
                EntryID:   entry.ID,
                CreatedAt: now,
            }
            if err := repository.NewTicketRepository(tx).Create(ctx, ticket); err != nil {
                return nil, nil, err
            }
            if err := repository.NewEventRepository(tx).IncrementSold(ctx, ev.ID, 1); err != nil {
                return nil, nil, err
            }
            ev.SoldCount++ // 同事务内后续的容量计算要看到这次售出
            fx.update(model.QueueUpdate{
                EventID:   ev.ID,
                UserID:    entry.UserID,
                Type:      model.UpdateEntryPurchased,
                Timestamp: now,
            })
            return entry, nil, nil
        }
        entry.Status = model.EntryStatusReleased
        entry.OfferExpiresAt = nil
        if err := queueRepo.Save(ctx, entry); err != nil {
            return nil, nil, err
        }
        fx.update(model.QueueUpdate{
            EventID:   ev.ID,
            UserID:    entry.UserID,
            Type:      model.UpdateEntryReleased,
            Timestamp: now,
        })
        return entry, nil, nil
    }
    return nil, nil, fmt.Errorf("queue entry %s in unknown status %q", entry.ID, entry.Status)
}

func (s *finalizerService) Release(ctx context.Context, eventID, userID string) error {
    _, err := s.Finalize(ctx, eventID, userID, OutcomeReleased)
    if errors.Is(err, ErrAlreadyFinalized) {
        // 对已购条目的取消只是 no-op，购票记录不受影响
        return nil
    }
    return err
}
