package middleware

import (
    "sync"
    "time"

    "github.com/gin-gonic/gin"
    "golang.org/x/time/rate"

    "github.com/d60-Lab/ticket-queue/pkg/response"
)

// 超过这个时长没有请求的调用方，其限流器随下一次清扫释放
const limiterIdleTimeout = 3 * time.Minute

type callerLimiter struct {
    limiter  *rate.Limiter
    lastSeen time.Time
}

// limiterPool 按调用方维护令牌桶；闲置条目周期性清理，
// 开售期间大量一次性用户不会把 map 撑到进程生命周期那么久
type limiterPool struct {
    rps   rate.Limit
    burst int
    idle  time.Duration

    mu        sync.Mutex
    limiters  map[string]*callerLimiter
    lastSweep time.Time
}

func newLimiterPool(rps rate.Limit, burst int, idle time.Duration) *limiterPool {
    return &limiterPool{
        rps:      rps,
        burst:    burst,
        idle:     idle,
        limiters: make(map[string]*callerLimiter),
    }
}

func (p *limiterPool) get(key string, now time.Time) *rate.Limiter {
    p.mu.Lock()
    defer p.mu.Unlock()

    if now.Sub(p.lastSweep) >= p.idle {
        for k, cl := range p.limiters {
            if now.Sub(cl.lastSeen) >= p.idle {
                delete(p.limiters, k)
            }
        }
        p.lastSweep = now
    }

    cl, ok := p.limiters[key]
    if !ok {
        cl = &callerLimiter{limiter: rate.NewLimiter(p.rps, p.burst)}
        p.limiters[key] = cl
    }
    cl.lastSeen = now
    return cl.limiter
}

func (p *limiterPool) size() int {
    p.mu.Lock()
    defer p.mu.Unlock()
    return len(p.limiters)
}

// RateLimit 按调用方（已登录用 userID，否则用客户端 IP）做令牌桶限流。
// 开售瞬间的位次轮询是主要流量来源，这里挡住单个客户端的刷接口行为。
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
    pool := newLimiterPool(rps, burst, limiterIdleTimeout)

    return func(c *gin.Context) {
        key := UserID(c)
        if key == "" {
            key = c.ClientIP()
        }
        if !pool.get(key, time.Now()).Allow() {
            response.TooManyRequests(c, "rate limit exceeded")
            c.Abort()
            return
        }
        c.Next()
    }
}
