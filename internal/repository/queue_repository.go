package repository

import (
    "context"
    "time"

    "gorm.io/gorm"

    "github.com/d60-Lab/ticket-queue/internal/model"
)

// QueueRepository 排队条目仓储接口
type QueueRepository interface {
    Get(ctx context.Context, eventID, userID string) (*model.QueueEntry, error)
    Create(ctx context.Context, e *model.QueueEntry) error
    Save(ctx context.Context, e *model.QueueEntry) error

    CountWaiting(ctx context.Context, eventID string) (int64, error)
    // MaxWaitingPosition 当前等待条目的最大位次；入队位次必须在此之上递增，
    // 否则前面有人退出后，晚到者会插到老等待者前面
    MaxWaitingPosition(ctx context.Context, eventID string) (int, error)
    // CountWaitingAhead 统计仍处于 waiting 且排在 (position, createdAt) 之前的条目数
    CountWaitingAhead(ctx context.Context, eventID string, position int, createdAt time.Time) (int64, error)
    CountActiveOffers(ctx context.Context, eventID string, now time.Time) (int64, error)

    // NextWaiting 按 position 升序、createdAt 兜底取最早的等待条目
    NextWaiting(ctx context.Context, eventID string, limit int) ([]*model.QueueEntry, error)
    ListExpiredOffers(ctx context.Context, eventID string, now time.Time) ([]*model.QueueEntry, error)
    // EventIDsWithExpiredOffers 主动清扫用：找出存在过期 offer 的活动
    EventIDsWithExpiredOffers(ctx context.Context, now time.Time) ([]string, error)
}

type queueRepository struct {
    db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) QueueRepository { return &queueRepository{db: db} }

func (r *queueRepository) Get(ctx context.Context, eventID, userID string) (*model.QueueEntry, error) {
    var e model.QueueEntry
    if err := r.db.WithContext(ctx).
        Where("event_id = ? AND user_id = ?", eventID, userID).
        First(&e).Error; err != nil {
        return nil, err
    }
    return &e, nil
}

func (r *queueRepository) Create(ctx context.Context, e *model.QueueEntry) error {
    return r.db.WithContext(ctx).Create(e).Error
}

func (r *queueRepository) Save(ctx context.Context, e *model.QueueEntry) error {
    return r.db.WithContext(ctx).Save(e).Error
}

func (r *queueRepository) CountWaiting(ctx context.Context, eventID string) (int64, error) {
    var cnt int64
    err := r.db.WithContext(ctx).
        Model(&model.QueueEntry{}).
        Where("event_id = ? AND status = ?", eventID, model.EntryStatusWaiting).
        Count(&cnt).Error
    return cnt, err
}

func (r *queueRepository) MaxWaitingPosition(ctx context.Context, eventID string) (int, error) {
    var pos int
    err := r.db.WithContext(ctx).
        Model(&model.QueueEntry{}).
        Where("event_id = ? AND status = ?", eventID, model.EntryStatusWaiting).
        Select("COALESCE(MAX(position), 0)").
        Scan(&pos).Error
    return pos, err
}

func (r *queueRepository) CountWaitingAhead(ctx context.Context, eventID string, position int, createdAt time.Time) (int64, error) {
    var cnt int64
    err := r.db.WithContext(ctx).
        Model(&model.QueueEntry{}).
        Where("event_id = ? AND status = ?", eventID, model.EntryStatusWaiting).
        Where("position < ? OR (position = ? AND created_at < ?)", position, position, createdAt).
        Count(&cnt).Error
    return cnt, err
}

func (r *queueRepository) CountActiveOffers(ctx context.Context, eventID string, now time.Time) (int64, error) {
    var cnt int64
    err := r.db.WithContext(ctx).
        Model(&model.QueueEntry{}).
        Where("event_id = ? AND status = ? AND offer_expires_at >= ?", eventID, model.EntryStatusOffered, now).
        Count(&cnt).Error
    return cnt, err
}

func (r *queueRepository) NextWaiting(ctx context.Context, eventID string, limit int) ([]*model.QueueEntry, error) {
    var res []*model.QueueEntry
    err := r.db.WithContext(ctx).
        Where("event_id = ? AND status = ?", eventID, model.EntryStatusWaiting).
        Order("position ASC, created_at ASC").
        Limit(limit).
        Find(&res).Error
    return res, err
}

func (r *queueRepository) ListExpiredOffers(ctx context.Context, eventID string, now time.Time) ([]*model.QueueEntry, error) {
    var res []*model.QueueEntry
    err := r.db.WithContext(ctx).
        Where("event_id = ? AND status = ? AND offer_expires_at < ?", eventID, model.EntryStatusOffered, now).
        Find(&res).Error
    return res, err
}

func (r *queueRepository) EventIDsWithExpiredOffers(ctx context.Context, now time.Time) ([]string, error) {
    var ids []string
    err := r.db.WithContext(ctx).
        Model(&model.QueueEntry{}).
        Distinct("event_id").
        Where("status = ? AND offer_expires_at < ?", model.EntryStatusOffered, now).
        Pluck("event_id", &ids).Error
    return ids, err
}
