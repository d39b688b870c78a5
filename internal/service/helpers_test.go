package service

import (
    "context"
    "fmt"
    "strings"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/stretchr/testify/require"
    "gorm.io/driver/sqlite"
    "gorm.io/gorm"
    gormlogger "gorm.io/gorm/logger"

    "github.com/d60-Lab/ticket-queue/internal/model"
    "github.com/d60-Lab/ticket-queue/internal/repository"
    "github.com/d60-Lab/ticket-queue/pkg/clock"
)

var testStart = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func setupDB(t *testing.T) *gorm.DB {
    t.Helper()
    // 每个测试独立的共享缓存内存库，单连接避免 sqlite 锁竞争
    dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
    db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
        Logger: gormlogger.Default.LogMode(gormlogger.Silent),
    })
    require.NoError(t, err)
    sqlDB, err := db.DB()
    require.NoError(t, err)
    sqlDB.SetMaxOpenConns(1)
    require.NoError(t, db.AutoMigrate(&model.Event{}, &model.QueueEntry{}, &model.Ticket{}))
    return db
}

type fixture struct {
    db        *gorm.DB
    clk       *clock.Fixed
    queue     QueueService
    reclaimer ReclaimerService
    finalizer FinalizerService
    eventID   string
    offerTTL  time.Duration
}

func newFixture(t *testing.T, totalTickets int) *fixture {
    t.Helper()
    db := setupDB(t)
    clk := clock.NewFixed(testStart)
    cfg := Config{OfferTTL: 30 * time.Minute, MaxAttempts: 5}

    eventID := uuid.New().String()
    require.NoError(t, repository.NewEventRepository(db).Create(context.Background(), &model.Event{
        ID: eventID, Name: "concert", TotalTickets: totalTickets,
    }))

    return &fixture{
        db:        db,
        clk:       clk,
        queue:     NewQueueService(db, clk, cfg),
        reclaimer: NewReclaimerService(db, clk, cfg),
        finalizer: NewFinalizerService(db, clk, cfg),
        eventID:   eventID,
        offerTTL:  cfg.OfferTTL,
    }
}

func (f *fixture) event(t *testing.T) *model.Event {
    t.Helper()
    ev, err := repository.NewEventRepository(f.db).Get(context.Background(), f.eventID)
    require.NoError(t, err)
    return ev
}

func (f *fixture) entry(t *testing.T, userID string) *model.QueueEntry {
    t.Helper()
    e, err := repository.NewQueueRepository(f.db).Get(context.Background(), f.eventID, userID)
    require.NoError(t, err)
    return e
}

// assertNoOversell 任何时刻 soldCount + 活跃 offer 数都不得超过总容量
func (f *fixture) assertNoOversell(t *testing.T) {
    t.Helper()
    ev := f.event(t)
    offers, err := repository.NewQueueRepository(f.db).CountActiveOffers(context.Background(), f.eventID, f.clk.Now())
    require.NoError(t, err)
    require.LessOrEqual(t, ev.SoldCount+int(offers), ev.TotalTickets,
        "oversold: sold=%d offers=%d total=%d", ev.SoldCount, offers, ev.TotalTickets)
}
