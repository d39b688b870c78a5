package worker

import (
    "context"
    "encoding/json"
    "time"

    "github.com/hibiken/asynq"
)

const (
    TypeOfferExpiry = "offer:expire"
    TypeQueueSweep  = "queue:sweep"
)

// OfferExpiryPayload 单个活动的定点回收任务
type OfferExpiryPayload struct {
    EventID string `json:"event_id"`
}

// Client 封装 asynq 客户端，实现 service.ExpiryScheduler
type Client struct {
    client *asynq.Client
}

func NewClient(redisOpt asynq.RedisClientOpt) *Client {
    return &Client{client: asynq.NewClient(redisOpt)}
}

// ScheduleOfferExpiry 在 offer 到期时刻投递回收任务。回收本身幂等，
// 重复投递无害，所以不做去重。
func (c *Client) ScheduleOfferExpiry(_ context.Context, eventID string, at time.Time) error {
    payload, err := json.Marshal(OfferExpiryPayload{EventID: eventID})
    if err != nil {
        return err
    }
    task := asynq.NewTask(TypeOfferExpiry, payload)
    _, err = c.client.Enqueue(task, asynq.ProcessAt(at), asynq.Queue("critical"))
    return err
}

func (c *Client) Close() error { return c.client.Close() }
