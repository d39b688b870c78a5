package model

import (
    "time"
)

// Ticket 成交票（finalize 成功后写入，永不修改）
type Ticket struct {
    ID      string `gorm:"primaryKey;type:varchar(36)"`
    EventID string `gorm:"type:varchar(36);index:idx_ticket_event;not null"`
    UserID  string `gorm:"type:varchar(36);index:idx_ticket_user;not null"`
    // EntryID 回指产生本票的排队条目
    EntryID   string `gorm:"type:varchar(36);index;not null"`
    CreatedAt time.Time
}

func (Ticket) TableName() string { return "tickets" }
