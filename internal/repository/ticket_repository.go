package repository

import (
    "context"

    "gorm.io/gorm"

    "github.com/d60-Lab/ticket-queue/internal/model"
)

// TicketRepository 成交票仓储接口
type TicketRepository interface {
    Create(ctx context.Context, t *model.Ticket) error
    ListByUser(ctx context.Context, userID string, limit int) ([]*model.Ticket, error)
    CountByEvent(ctx context.Context, eventID string) (int64, error)
    ExistsByEventUser(ctx context.Context, eventID, userID string) (bool, error)
}

type ticketRepository struct {
    db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository { return &ticketRepository{db: db} }

func (r *ticketRepository) Create(ctx context.Context, t *model.Ticket) error {
    return r.db.WithContext(ctx).Create(t).Error
}

func (r *ticketRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Ticket, error) {
    var res []*model.Ticket
    err := r.db.WithContext(ctx).
        Where("user_id = ?", userID).
        Order("created_at DESC").
        Limit(limit).
        Find(&res).Error
    return res, err
}

func (r *ticketRepository) CountByEvent(ctx context.Context, eventID string) (int64, error) {
    var cnt int64
    err := r.db.WithContext(ctx).
        Model(&model.Ticket{}).
        Where("event_id = ?", eventID).
        Count(&cnt).Error
    return cnt, err
}

func (r *ticketRepository) ExistsByEventUser(ctx context.Context, eventID, userID string) (bool, error) {
    var cnt int64
    if err := r.db.WithContext(ctx).
        Model(&model.Ticket{}).
        Where("event_id = ? AND user_id = ?", eventID, userID).
        Count(&cnt).Error; err != nil {
        return false, err
    }
    return cnt > 0, nil
}
