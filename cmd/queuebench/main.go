package main

import (
    "context"
    "fmt"
    "os"
    "sort"
    "strconv"
    "sync"
    "time"

    "github.com/google/uuid"
    "gorm.io/driver/sqlite"
    "gorm.io/gorm"
    gormlogger "gorm.io/gorm/logger"

    "github.com/d60-Lab/ticket-queue/internal/model"
    "github.com/d60-Lab/ticket-queue/internal/repository"
    "github.com/d60-Lab/ticket-queue/internal/service"
    "github.com/d60-Lab/ticket-queue/pkg/clock"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

// 模拟开售瞬间：N 个用户并发抢 CAP 张票，统计 RequestSpot 延迟与最终账本
func main() {
    db := must(gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
        Logger: gormlogger.Default.LogMode(gormlogger.Silent),
    }))
    if err := db.AutoMigrate(&model.Event{}, &model.QueueEntry{}, &model.Ticket{}); err != nil {
        panic(err)
    }

    N := 2000
    if s := os.Getenv("N"); s != "" {
        if n, err := strconv.Atoi(s); err == nil && n > 0 { N = n }
    }
    CAP := 100
    if s := os.Getenv("CAP"); s != "" {
        if c, err := strconv.Atoi(s); err == nil && c > 0 { CAP = c }
    }
    CONC := 32
    if s := os.Getenv("CONC"); s != "" {
        if c, err := strconv.Atoi(s); err == nil && c > 0 { CONC = c }
    }

    ctx := context.Background()
    eventID := uuid.New().String()
    eventRepo := repository.NewEventRepository(db)
    if err := eventRepo.Create(ctx, &model.Event{ID: eventID, Name: "bench", TotalTickets: CAP}); err != nil {
        panic(err)
    }

    svc := service.NewQueueService(db, clock.NewSystem(), service.Config{MaxAttempts: 50})

    var (
        mu   sync.Mutex
        durs = make([]time.Duration, 0, N)
        offered, waiting int
    )
    sem := make(chan struct{}, CONC)
    var wg sync.WaitGroup
    start := time.Now()
    for i := 0; i < N; i++ {
        wg.Add(1)
        sem <- struct{}{}
        go func() {
            defer wg.Done()
            defer func() { <-sem }()
            userID := uuid.New().String()
            t0 := time.Now()
            entry, err := svc.RequestSpot(ctx, eventID, userID)
            d := time.Since(t0)
            mu.Lock()
            defer mu.Unlock()
            durs = append(durs, d)
            if err != nil {
                fmt.Println("request failed:", err)
                return
            }
            switch entry.Status {
            case model.EntryStatusOffered:
                offered++
            case model.EntryStatusWaiting:
                waiting++
            }
        }()
    }
    wg.Wait()
    total := time.Since(start)

    sort.Slice(durs, func(i, j int) bool { return durs[i] < durs[j] })
    pct := func(p float64) time.Duration {
        if len(durs) == 0 { return 0 }
        idx := int(float64(len(durs)-1) * p)
        return durs[idx]
    }

    fmt.Printf("requests=%d conc=%d cap=%d elapsed=%v qps=%.0f\n", N, CONC, CAP, total, float64(N)/total.Seconds())
    fmt.Printf("latency p50=%v p95=%v p99=%v max=%v\n", pct(0.50), pct(0.95), pct(0.99), durs[len(durs)-1])
    fmt.Printf("offered=%d waiting=%d\n", offered, waiting)
    if offered > CAP {
        fmt.Println("OVERSOLD: offered exceeds capacity")
        os.Exit(1)
    }
}
