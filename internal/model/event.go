package model

import (
    "time"
)

// Event 活动（容量来源，totalTickets/soldCount 由主站维护）
type Event struct {
    ID           string `gorm:"primaryKey;type:varchar(36)"`
    Name         string `gorm:"type:varchar(255);not null"`
    TotalTickets int    `gorm:"not null"`
    SoldCount    int    `gorm:"not null;default:0"`
    // Version 每次容量相关写入 +1，乐观锁保证同一活动的分配操作线性化
    Version   int64 `gorm:"not null;default:0"`
    CreatedAt time.Time
    UpdatedAt time.Time
}

func (Event) TableName() string { return "events" }
