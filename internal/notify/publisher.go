package notify

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/d60-Lab/ticket-queue/internal/model"
    "github.com/d60-Lab/ticket-queue/pkg/logger"
)

// Publisher 异步把队列变更事件发布到 Redis Pub/Sub。
// 通道满时丢弃并告警：通知是尽力而为的旁路，不能反压核心分配路径。
type Publisher struct {
    rdb *redis.Client
    ch  chan model.QueueUpdate
}

func NewPublisher(rdb *redis.Client, queueSize int) *Publisher {
    if queueSize <= 0 {
        queueSize = 10000
    }
    return &Publisher{rdb: rdb, ch: make(chan model.QueueUpdate, queueSize)}
}

// ChannelFor 某活动的变更广播频道名
func ChannelFor(eventID string) string {
    return fmt.Sprintf("queue:updates:%s", eventID)
}

// Start 启动发布 worker；返回停止函数
func (p *Publisher) Start(workers int) func(context.Context) error {
    if workers <= 0 {
        workers = 2
    }
    stopCh := make(chan struct{})
    for i := 0; i < workers; i++ {
        go func() {
            for {
                select {
                case u := <-p.ch:
                    ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
                    p.publish(ctx, u)
                    cancel()
                case <-stopCh:
                    return
                }
            }
        }()
    }
    return func(ctx context.Context) error {
        close(stopCh)
        // 等待队列自然排空一小段时间
        timeout := time.After(2 * time.Second)
        for {
            select {
            case <-timeout:
                return nil
            default:
                if len(p.ch) == 0 {
                    return nil
                }
                time.Sleep(50 * time.Millisecond)
            }
        }
    }
}

// PublishUpdate 实现 service.UpdatePublisher
func (p *Publisher) PublishUpdate(_ context.Context, u model.QueueUpdate) {
    select {
    case p.ch <- u:
    default:
        logger.Warn("notify queue full, drop update",
            zap.String("event", u.EventID), zap.String("type", string(u.Type)))
    }
}

func (p *Publisher) publish(ctx context.Context, u model.QueueUpdate) {
    payload, err := json.Marshal(u)
    if err != nil {
        logger.Error("marshal queue update", zap.Error(err))
        return
    }
    if err := p.rdb.Publish(ctx, ChannelFor(u.EventID), payload).Err(); err != nil {
        logger.Warn("publish queue update failed",
            zap.String("event", u.EventID), zap.Error(err))
    }
}
