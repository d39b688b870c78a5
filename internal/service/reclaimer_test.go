package service

import (
    "context"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/stretchr/testify/require"

    "github.com/d60-Lab/ticket-queue/internal/model"
    "github.com/d60-Lab/ticket-queue/internal/repository"
)

func TestReclaimExpired_PromotesFIFO(t *testing.T) {
    f := newFixture(t, 1)
    ctx := context.Background()

    _, err := f.queue.RequestSpot(ctx, f.eventID, "user-a")
    require.NoError(t, err)
    for _, u := range []string{"user-b", "user-c"} {
        _, err := f.queue.RequestSpot(ctx, f.eventID, u)
        require.NoError(t, err)
    }

    f.clk.Advance(f.offerTTL + 1)

    reclaimed, err := f.reclaimer.ReclaimExpired(ctx, f.eventID)
    require.NoError(t, err)
    require.Equal(t, 1, reclaimed)

    require.Equal(t, model.EntryStatusExpired, f.entry(t, "user-a").Status)
    b := f.entry(t, "user-b")
    require.Equal(t, model.EntryStatusOffered, b.Status)
    require.WithinDuration(t, f.clk.Now().Add(f.offerTTL), *b.OfferExpiresAt, time.Second)
    require.Equal(t, model.EntryStatusWaiting, f.entry(t, "user-c").Status)

    t.Run("rerun is a no-op", func(t *testing.T) {
        again, err := f.reclaimer.ReclaimExpired(ctx, f.eventID)
        require.NoError(t, err)
        require.Zero(t, again)
        require.Equal(t, model.EntryStatusOffered, f.entry(t, "user-b").Status)
    })
    f.assertNoOversell(t)
}

func TestReclaimExpired_TieBreakByCreatedAt(t *testing.T) {
    f := newFixture(t, 1)
    ctx := context.Background()
    queueRepo := repository.NewQueueRepository(f.db)

    // 晋升-过期循环后 position 可能重复，createdAt 是最终裁决
    early := &model.QueueEntry{
        ID: uuid.New().String(), EventID: f.eventID, UserID: "user-early",
        Status: model.EntryStatusWaiting, Position: 3, CreatedAt: testStart.Add(-2 * time.Minute),
    }
    late := &model.QueueEntry{
        ID: uuid.New().String(), EventID: f.eventID, UserID: "user-late",
        Status: model.EntryStatusWaiting, Position: 3, CreatedAt: testStart.Add(-time.Minute),
    }
    require.NoError(t, queueRepo.Create(ctx, late))
    require.NoError(t, queueRepo.Create(ctx, early))

    _, err := f.reclaimer.ReclaimExpired(ctx, f.eventID)
    require.NoError(t, err)

    require.Equal(t, model.EntryStatusOffered, f.entry(t, "user-early").Status)
    require.Equal(t, model.EntryStatusWaiting, f.entry(t, "user-late").Status)
}

func TestSweepAll(t *testing.T) {
    f := newFixture(t, 1)
    ctx := context.Background()

    otherEvent := uuid.New().String()
    require.NoError(t, repository.NewEventRepository(f.db).Create(ctx, &model.Event{
        ID: otherEvent, Name: "second", TotalTickets: 1,
    }))

    _, err := f.queue.RequestSpot(ctx, f.eventID, "user-a")
    require.NoError(t, err)
    _, err = f.queue.RequestSpot(ctx, otherEvent, "user-b")
    require.NoError(t, err)

    f.clk.Advance(f.offerTTL + 1)
    require.NoError(t, f.reclaimer.SweepAll(ctx))

    require.Equal(t, model.EntryStatusExpired, f.entry(t, "user-a").Status)
    e, err := repository.NewQueueRepository(f.db).Get(ctx, otherEvent, "user-b")
    require.NoError(t, err)
    require.Equal(t, model.EntryStatusExpired, e.Status)
}

// 规格场景：totalTickets=1。A 拿到 offer，B 排队；A 过期后 B 被晋升；
// B 完成购买后账本永久定格在 sold=1, available=0。
func TestScenario_SingleTicketLifecycle(t *testing.T) {
    f := newFixture(t, 1)
    ctx := context.Background()

    a, err := f.queue.RequestSpot(ctx, f.eventID, "user-a")
    require.NoError(t, err)
    require.Equal(t, model.EntryStatusOffered, a.Status)

    b, err := f.queue.RequestSpot(ctx, f.eventID, "user-b")
    require.NoError(t, err)
    require.Equal(t, model.EntryStatusWaiting, b.Status)
    require.Equal(t, 1, b.Position)

    f.clk.Advance(f.offerTTL + 1)
    _, err = f.reclaimer.ReclaimExpired(ctx, f.eventID)
    require.NoError(t, err)

    require.Equal(t, model.EntryStatusExpired, f.entry(t, "user-a").Status)
    require.Equal(t, model.EntryStatusOffered, f.entry(t, "user-b").Status)

    entry, err := f.finalizer.Finalize(ctx, f.eventID, "user-b", OutcomeCompleted)
    require.NoError(t, err)
    require.Equal(t, model.EntryStatusPurchased, entry.Status)

    ev := f.event(t)
    require.Equal(t, 1, ev.SoldCount)
    require.Equal(t, 1, ev.TotalTickets)

    // 此后任何请求只能排队
    c, err := f.queue.RequestSpot(ctx, f.eventID, "user-c")
    require.NoError(t, err)
    require.Equal(t, model.EntryStatusWaiting, c.Status)
    f.assertNoOversell(t)
}

// 提交成功后旁路动作才触发：晋升产生的 offer 会安排定点回收并对外广播
func TestSideEffects_EmittedAfterCommit(t *testing.T) {
    f := newFixture(t, 1)
    ctx := context.Background()

    sched := &recordingScheduler{}
    pub := &recordingPublisher{}
    cfg := Config{OfferTTL: f.offerTTL, MaxAttempts: 5, Scheduler: sched, Publisher: pub}
    queue := NewQueueService(f.db, f.clk, cfg)
    reclaimer := NewReclaimerService(f.db, f.clk, cfg)

    _, err := queue.RequestSpot(ctx, f.eventID, "user-a")
    require.NoError(t, err)
    require.Len(t, sched.scheduled, 1)
    require.Equal(t, f.clk.Now().Add(f.offerTTL), sched.scheduled[0])

    _, err = queue.RequestSpot(ctx, f.eventID, "user-b")
    require.NoError(t, err)

    f.clk.Advance(f.offerTTL + 1)
    _, err = reclaimer.ReclaimExpired(ctx, f.eventID)
    require.NoError(t, err)

    require.Len(t, sched.scheduled, 2, "B 的晋升应安排新的定点回收")
    var types []model.UpdateType
    for _, u := range pub.updates {
        types = append(types, u.Type)
    }
    require.Contains(t, types, model.UpdateOfferGranted)
    require.Contains(t, types, model.UpdateUserJoined)
    require.Contains(t, types, model.UpdateOfferExpired)
}

type recordingScheduler struct {
    scheduled []time.Time
}

func (r *recordingScheduler) ScheduleOfferExpiry(_ context.Context, _ string, at time.Time) error {
    r.scheduled = append(r.scheduled, at)
    return nil
}

type recordingPublisher struct {
    updates []model.QueueUpdate
}

func (r *recordingPublisher) PublishUpdate(_ context.Context, u model.QueueUpdate) {
    r.updates = append(r.updates, u)
}
