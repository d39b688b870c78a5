package repository

import (
    "context"
    "errors"

    "gorm.io/gorm"

    "github.com/d60-Lab/ticket-queue/internal/model"
)

// ErrVersionConflict 乐观锁版本不匹配，调用方需要重试
var ErrVersionConflict = errors.New("event version conflict")

// EventRepository 活动仓储接口（容量账本的持久化侧）
type EventRepository interface {
    Create(ctx context.Context, ev *model.Event) error
    Get(ctx context.Context, id string) (*model.Event, error)
    // BumpVersion 以 CAS 方式将版本号 +1，是活动级原子操作的提交点
    BumpVersion(ctx context.Context, id string, fromVersion int64) error
    // IncrementSold 永久消耗容量（finalize completed 时调用）
    IncrementSold(ctx context.Context, id string, delta int) error
}

type eventRepository struct {
    db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository { return &eventRepository{db: db} }

func (r *eventRepository) Create(ctx context.Context, ev *model.Event) error {
    return r.db.WithContext(ctx).Create(ev).Error
}

func (r *eventRepository) Get(ctx context.Context, id string) (*model.Event, error) {
    var ev model.Event
    if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ev).Error; err != nil {
        return nil, err
    }
    return &ev, nil
}

func (r *eventRepository) BumpVersion(ctx context.Context, id string, fromVersion int64) error {
    res := r.db.WithContext(ctx).
        Model(&model.Event{}).
        Where("id = ? AND version = ?", id, fromVersion).
        Update("version", gorm.Expr("version + 1"))
    if res.Error != nil {
        return res.Error
    }
    if res.RowsAffected == 0 {
        return ErrVersionConflict
    }
    return nil
}

func (r *eventRepository) IncrementSold(ctx context.Context, id string, delta int) error {
    return r.db.WithContext(ctx).
        Model(&model.Event{}).
        Where("id = ?", id).
        Update("sold_count", gorm.Expr("sold_count + ?", delta)).Error
}
