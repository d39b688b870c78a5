package service

import (
    "context"
    "errors"
    "time"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/d60-Lab/ticket-queue/internal/model"
    "github.com/d60-Lab/ticket-queue/internal/repository"
    "github.com/d60-Lab/ticket-queue/pkg/clock"
)

// QueueStatus 用户视角的排队状态（位次只统计仍在等待的条目，随晋升/过期自动压缩）
type QueueStatus struct {
    EventID        string            `json:"event_id"`
    UserID         string            `json:"user_id"`
    Status         model.EntryStatus `json:"status"`
    Position       int               `json:"position,omitempty"`
    TotalWaiting   int64             `json:"total_waiting,omitempty"`
    OfferExpiresAt *time.Time        `json:"offer_expires_at,omitempty"`
}

// QueueService 分配器 + 位次计算：谁有权买票、买不到的排第几
type QueueService interface {
    RequestSpot(ctx context.Context, eventID, userID string) (*model.QueueEntry, error)
    RequestAdditionalSpot(ctx context.Context, eventID, userID string) (*model.QueueEntry, error)
    GetPosition(ctx context.Context, eventID, userID string) (*QueueStatus, error)
}

type queueService struct {
    db  *gorm.DB
    clk clock.Clock
    cfg Config
}

func NewQueueService(db *gorm.DB, clk clock.Clock, cfg Config) QueueService {
    return &queueService{db: db, clk: clk, cfg: cfg.withDefaults()}
}

// RequestSpot 申请名额。有容量立刻给 offer，没容量进等待队列；
// 对同一 (event, user) 幂等：已持有效 offer 或仍在等待则原样返回。
func (s *queueService) RequestSpot(ctx context.Context, eventID, userID string) (*model.QueueEntry, error) {
    now := s.clk.Now()
    var (
        out *model.QueueEntry
        fx  sideEffects
    )
    err := runEventTxn(ctx, s.db, eventID, s.cfg.MaxAttempts, func(tx *gorm.DB, ev *model.Event) error {
        // 惰性回收 + 先为队头腾位，保证 FIFO 不被新请求插队
        if _, err := reclaimLocked(ctx, tx, ev, now, &fx); err != nil {
            return err
        }
        if err := promoteLocked(ctx, tx, ev, now, s.cfg.OfferTTL, &fx); err != nil {
            return err
        }

        queueRepo := repository.NewQueueRepository(tx)
        entry, err := queueRepo.Get(ctx, eventID, userID)
        if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
            return err
        }
        if entry != nil && !entry.IsTerminal() {
            out = entry
            return nil
        }

        out, err = s.allocateLocked(ctx, tx, ev, entry, eventID, userID, now, &fx)
        return err
    })
    if err != nil {
        return nil, err
    }
    fx.emit(ctx, s.cfg)
    return out, nil
}

// RequestAdditionalSpot 已购用户追加购票。走与 RequestSpot 完全相同的
// 原子分配路径，临近售罄时并发追购不会超卖。
func (s *queueService) RequestAdditionalSpot(ctx context.Context, eventID, userID string) (*model.QueueEntry, error) {
    now := s.clk.Now()
    var (
        out *model.QueueEntry
        fx  sideEffects
    )
    err := runEventTxn(ctx, s.db, eventID, s.cfg.MaxAttempts, func(tx *gorm.DB, ev *model.Event) error {
        if _, err := reclaimLocked(ctx, tx, ev, now, &fx); err != nil {
            return err
        }
        if err := promoteLocked(ctx, tx, ev, now, s.cfg.OfferTTL, &fx); err != nil {
            return err
        }

        queueRepo := repository.NewQueueRepository(tx)
        entry, err := queueRepo.Get(ctx, eventID, userID)
        if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
            return err
        }
        if entry != nil && !entry.IsTerminal() {
            out = entry
            return nil
        }

        has, err := repository.NewTicketRepository(tx).ExistsByEventUser(ctx, eventID, userID)
        if err != nil {
            return err
        }
        if !has {
            return ErrPurchaseRequired
        }

        out, err = s.allocateLocked(ctx, tx, ev, entry, eventID, userID, now, &fx)
        return err
    })
    if err != nil {
        return nil, err
    }
    fx.emit(ctx, s.cfg)
    return out, nil
}

// allocateLocked 在活动事务内为 (eventID, userID) 开启新生命周期：
// 有容量发 offer，否则入队；existing 为终态条目时原地复用该行。
func (s *queueService) allocateLocked(ctx context.Context, tx *gorm.DB, ev *model.Event, existing *model.QueueEntry, eventID, userID string, now time.Time, fx *sideEffects) (*model.QueueEntry, error) {
    queueRepo := repository.NewQueueRepository(tx)

    entry := existing
    fresh := entry == nil
    if fresh {
        entry = &model.QueueEntry{ID: uuid.New().String(), EventID: eventID, UserID: userID}
    }
    entry.CreatedAt = now
    entry.Position = 0
    entry.OfferExpiresAt = nil

    avail, err := availableLocked(ctx, tx, ev, now)
    if err != nil {
        return nil, err
    }
    if err := s.grantLocked(ctx, ev, entry, avail, now, fx); err != nil {
        if !errors.Is(err, ErrCapacityExhausted) {
            return nil, err
        }
        // 降级为 waiting。位次在现有等待者之上单调递增：前面有人退出时
        // 等待人数会缩水，用人数+1 会让晚到者插队
        maxPos, err := queueRepo.MaxWaitingPosition(ctx, eventID)
        if err != nil {
            return nil, err
        }
        entry.Status = model.EntryStatusWaiting
        entry.Position = maxPos + 1
        fx.update(model.QueueUpdate{
            EventID:   eventID,
            UserID:    userID,
            Type:      model.UpdateUserJoined,
            Timestamp: now,
        })
    }

    if fresh {
        err = queueRepo.Create(ctx, entry)
    } else {
        err = queueRepo.Save(ctx, entry)
    }
    if err != nil {
        return nil, err
    }
    return entry, nil
}

func (s *queueService) grantLocked(ctx context.Context, ev *model.Event, entry *model.QueueEntry, avail int, now time.Time, fx *sideEffects) error {
    if avail <= 0 {
        return ErrCapacityExhausted
    }
    deadline := now.Add(s.cfg.OfferTTL)
    entry.Status = model.EntryStatusOffered
    entry.OfferExpiresAt = &deadline
    fx.update(model.QueueUpdate{
        EventID:        ev.ID,
        UserID:         entry.UserID,
        Type:           model.UpdateOfferGranted,
        OfferExpiresAt: &deadline,
        Timestamp:      now,
    })
    fx.schedule(ev.ID, deadline)
    return nil
}

// GetPosition 纯读。waiting 返回压缩后的实时位次；offered 返回截止时间，
// 已过期的 offer 直接报告 expired（不落库，清扫任务负责实际回收）。
func (s *queueService) GetPosition(ctx context.Context, eventID, userID string) (*QueueStatus, error) {
    now := s.clk.Now()
    queueRepo := repository.NewQueueRepository(s.db)

    entry, err := queueRepo.Get(ctx, eventID, userID)
    if err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, ErrEntryNotFound
        }
        return nil, err
    }

    st := &QueueStatus{EventID: eventID, UserID: userID, Status: entry.Status}
    switch entry.Status {
    case model.EntryStatusWaiting:
        ahead, err := queueRepo.CountWaitingAhead(ctx, eventID, entry.Position, entry.CreatedAt)
        if err != nil {
            return nil, err
        }
        total, err := queueRepo.CountWaiting(ctx, eventID)
        if err != nil {
            return nil, err
        }
        st.Position = int(ahead) + 1
        st.TotalWaiting = total
    case model.EntryStatusOffered:
        if entry.IsExpired(now) {
            st.Status = model.EntryStatusExpired
        } else {
            st.OfferExpiresAt = entry.OfferExpiresAt
        }
    }
    return st, nil
}
