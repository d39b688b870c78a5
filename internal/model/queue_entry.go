package model

import (
    "time"
)

// EntryStatus 排队条目状态
type EntryStatus string

const (
    EntryStatusWaiting   EntryStatus = "waiting"
    EntryStatusOffered   EntryStatus = "offered"
    EntryStatusExpired   EntryStatus = "expired"
    EntryStatusPurchased EntryStatus = "purchased"
    EntryStatusReleased  EntryStatus = "released"
)

// QueueEntry 排队条目（每个用户在每个活动下最多一条）
type QueueEntry struct {
    ID      string `gorm:"primaryKey;type:varchar(36)"`
    EventID string `gorm:"type:varchar(36);index:idx_entry_event;index:idx_entry_pair,unique;not null"`
    UserID  string `gorm:"type:varchar(36);not null;index:idx_entry_pair,unique"`
    // 复合唯一键，同一活动同一用户只有一条生命周期记录
    // idx_entry_pair = (event_id, user_id)
    Status         EntryStatus `gorm:"type:varchar(16);index:idx_entry_event_status;not null"`
    Position       int         `gorm:"not null;default:0"` // waiting 时的入队序号，晋升后不再使用
    OfferExpiresAt *time.Time  `gorm:"index"`              // 仅 offered 状态有值
    CreatedAt      time.Time   `gorm:"index"`              // FIFO 次序的最终裁决字段
    UpdatedAt      time.Time
}

func (QueueEntry) TableName() string { return "queue_entries" }

// IsExpired 统一的过期判定，所有读到 offered 条目的组件都走这里。
// 严格早于 now 才算过期，到期瞬间 offer 仍然有效。
func (e *QueueEntry) IsExpired(now time.Time) bool {
    return e.Status == EntryStatusOffered && e.OfferExpiresAt != nil && e.OfferExpiresAt.Before(now)
}

// IsTerminal 终态条目不再参与排队，重新请求会原地开启新生命周期
func (e *QueueEntry) IsTerminal() bool {
    switch e.Status {
    case EntryStatusExpired, EntryStatusPurchased, EntryStatusReleased:
        return true
    }
    return false
}
