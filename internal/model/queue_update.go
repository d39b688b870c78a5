package model

import "time"

// UpdateType 队列变更广播类型
type UpdateType string

const (
    UpdateUserJoined     UpdateType = "user_joined"
    UpdateOfferGranted   UpdateType = "offer_granted"
    UpdateOfferExpired   UpdateType = "offer_expired"
    UpdateEntryReleased  UpdateType = "entry_released"
    UpdateEntryPurchased UpdateType = "entry_purchased"
)

// QueueUpdate 队列状态变更事件，提交后发布到 Redis Pub/Sub 供宿主推送通知
type QueueUpdate struct {
    EventID        string     `json:"event_id"`
    UserID         string     `json:"user_id"`
    Type           UpdateType `json:"type"`
    OfferExpiresAt *time.Time `json:"offer_expires_at,omitempty"`
    Timestamp      time.Time  `json:"timestamp"`
}
