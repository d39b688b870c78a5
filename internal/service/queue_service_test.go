package service

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "github.com/d60-Lab/ticket-queue/internal/model"
)

func TestRequestSpot_GrantsOfferWhileCapacity(t *testing.T) {
    f := newFixture(t, 2)
    ctx := context.Background()

    a, err := f.queue.RequestSpot(ctx, f.eventID, "user-a")
    require.NoError(t, err)
    require.Equal(t, model.EntryStatusOffered, a.Status)
    require.NotNil(t, a.OfferExpiresAt)
    require.Equal(t, f.clk.Now().Add(f.offerTTL), *a.OfferExpiresAt)

    b, err := f.queue.RequestSpot(ctx, f.eventID, "user-b")
    require.NoError(t, err)
    require.Equal(t, model.EntryStatusOffered, b.Status)

    // 容量用尽，后来者排队
    c, err := f.queue.RequestSpot(ctx, f.eventID, "user-c")
    require.NoError(t, err)
    require.Equal(t, model.EntryStatusWaiting, c.Status)
    require.Equal(t, 1, c.Position)
    require.Nil(t, c.OfferExpiresAt)

    d, err := f.queue.RequestSpot(ctx, f.eventID, "user-d")
    require.NoError(t, err)
    require.Equal(t, model.EntryStatusWaiting, d.Status)
    require.Equal(t, 2, d.Position)

    f.assertNoOversell(t)
}

func TestRequestSpot_Idempotent(t *testing.T) {
    f := newFixture(t, 1)
    ctx := context.Background()

    first, err := f.queue.RequestSpot(ctx, f.eventID, "user-a")
    require.NoError(t, err)
    again, err := f.queue.RequestSpot(ctx, f.eventID, "user-a")
    require.NoError(t, err)
    require.Equal(t, first.ID, again.ID)
    require.Equal(t, model.EntryStatusOffered, again.Status)
    require.Equal(t, *first.OfferExpiresAt, *again.OfferExpiresAt)

    // 等待中的重复请求同样原样返回
    w1, err := f.queue.RequestSpot(ctx, f.eventID, "user-b")
    require.NoError(t, err)
    w2, err := f.queue.RequestSpot(ctx, f.eventID, "user-b")
    require.NoError(t, err)
    require.Equal(t, w1.ID, w2.ID)
    require.Equal(t, 1, w2.Position)

    var cnt int64
    require.NoError(t, f.db.Model(&model.QueueEntry{}).Where("event_id = ?", f.eventID).Count(&cnt).Error)
    require.EqualValues(t, 2, cnt, "同一用户只应有一条条目")
}

func TestRequestSpot_EventNotFound(t *testing.T) {
    f := newFixture(t, 1)
    _, err := f.queue.RequestSpot(context.Background(), "no-such-event", "user-a")
    require.ErrorIs(t, err, ErrEventNotFound)
}

func TestRequestSpot_LazyReclaimGrantsFreedCapacity(t *testing.T) {
    f := newFixture(t, 1)
    ctx := context.Background()

    _, err := f.queue.RequestSpot(ctx, f.eventID, "user-a")
    require.NoError(t, err)

    // A 的 offer 过期后，新请求触发惰性回收并直接拿到名额
    f.clk.Advance(f.offerTTL + 1)
    b, err := f.queue.RequestSpot(ctx, f.eventID, "user-b")
    require.NoError(t, err)
    require.Equal(t, model.EntryStatusOffered, b.Status)
    require.Equal(t, model.EntryStatusExpired, f.entry(t, "user-a").Status)
    f.assertNoOversell(t)
}

func TestRequestSpot_RejoinAfterTerminal(t *testing.T) {
    f := newFixture(t, 1)
    ctx := context.Background()

    a, err := f.queue.RequestSpot(ctx, f.eventID, "user-a")
    require.NoError(t, err)
    f.clk.Advance(f.offerTTL + 1)

    // B 的请求回收了 A 的过期 offer 并拿走名额
    _, err = f.queue.RequestSpot(ctx, f.eventID, "user-b")
    require.NoError(t, err)

    // A 重新请求：同一行原地开启新生命周期，排到队尾
    a2, err := f.queue.RequestSpot(ctx, f.eventID, "user-a")
    require.NoError(t, err)
    require.Equal(t, a.ID, a2.ID)
    require.Equal(t, model.EntryStatusWaiting, a2.Status)
    require.Equal(t, 1, a2.Position)
}

// 早先的等待者退出后，晚加入者的位次必须仍然排在所有现存等待者之后，
// 否则晋升会越过更早加入的人
func TestRequestSpot_PositionMonotonicAfterReleases(t *testing.T) {
    f := newFixture(t, 1)
    ctx := context.Background()

    _, err := f.queue.RequestSpot(ctx, f.eventID, "holder")
    require.NoError(t, err)
    for _, u := range []string{"wait-a", "wait-b", "wait-c"} {
        f.clk.Advance(time.Minute)
        _, err := f.queue.RequestSpot(ctx, f.eventID, u)
        require.NoError(t, err)
    }

    require.NoError(t, f.finalizer.Release(ctx, f.eventID, "wait-a"))
    require.NoError(t, f.finalizer.Release(ctx, f.eventID, "wait-b"))

    f.clk.Advance(time.Minute)
    d, err := f.queue.RequestSpot(ctx, f.eventID, "late-d")
    require.NoError(t, err)
    require.Greater(t, d.Position, f.entry(t, "wait-c").Position)

    // 名额释放后晋升的必须是更早加入的 wait-c
    require.NoError(t, f.finalizer.Release(ctx, f.eventID, "holder"))
    require.Equal(t, model.EntryStatusOffered, f.entry(t, "wait-c").Status)
    require.Equal(t, model.EntryStatusWaiting, f.entry(t, "late-d").Status)
}

func TestGetPosition(t *testing.T) {
    f := newFixture(t, 1)
    ctx := context.Background()

    _, err := f.queue.RequestSpot(ctx, f.eventID, "user-a")
    require.NoError(t, err)
    for _, u := range []string{"user-b", "user-c", "user-d"} {
        _, err := f.queue.RequestSpot(ctx, f.eventID, u)
        require.NoError(t, err)
    }

    t.Run("offered entry reports deadline", func(t *testing.T) {
        st, err := f.queue.GetPosition(ctx, f.eventID, "user-a")
        require.NoError(t, err)
        require.Equal(t, model.EntryStatusOffered, st.Status)
        require.NotNil(t, st.OfferExpiresAt)
    })

    t.Run("waiting entries ranked fifo", func(t *testing.T) {
        st, err := f.queue.GetPosition(ctx, f.eventID, "user-c")
        require.NoError(t, err)
        require.Equal(t, model.EntryStatusWaiting, st.Status)
        require.Equal(t, 2, st.Position)
        require.EqualValues(t, 3, st.TotalWaiting)
    })

    t.Run("rank compacts when someone ahead leaves", func(t *testing.T) {
        require.NoError(t, f.finalizer.Release(ctx, f.eventID, "user-b"))
        st, err := f.queue.GetPosition(ctx, f.eventID, "user-c")
        require.NoError(t, err)
        require.Equal(t, 1, st.Position)
        require.EqualValues(t, 2, st.TotalWaiting)
    })

    t.Run("expired offer reported without write", func(t *testing.T) {
        f.clk.Advance(f.offerTTL + 1)
        st, err := f.queue.GetPosition(ctx, f.eventID, "user-a")
        require.NoError(t, err)
        require.Equal(t, model.EntryStatusExpired, st.Status)
        // 纯读：落库状态仍是 offered，回收留给清扫任务
        require.Equal(t, model.EntryStatusOffered, f.entry(t, "user-a").Status)
    })

    t.Run("unknown user", func(t *testing.T) {
        _, err := f.queue.GetPosition(ctx, f.eventID, "nobody")
        require.ErrorIs(t, err, ErrEntryNotFound)
    })
}

func TestRequestAdditionalSpot(t *testing.T) {
    f := newFixture(t, 3)
    ctx := context.Background()

    _, err := f.queue.RequestSpot(ctx, f.eventID, "user-a")
    require.NoError(t, err)

    t.Run("requires prior purchase", func(t *testing.T) {
        _, err := f.queue.RequestAdditionalSpot(ctx, f.eventID, "user-b")
        require.ErrorIs(t, err, ErrPurchaseRequired)
    })

    _, err = f.finalizer.Finalize(ctx, f.eventID, "user-a", OutcomeCompleted)
    require.NoError(t, err)

    t.Run("grants new offer through the same allocator", func(t *testing.T) {
        entry, err := f.queue.RequestAdditionalSpot(ctx, f.eventID, "user-a")
        require.NoError(t, err)
        require.Equal(t, model.EntryStatusOffered, entry.Status)
        f.assertNoOversell(t)
    })

    t.Run("idempotent while entry active", func(t *testing.T) {
        again, err := f.queue.RequestAdditionalSpot(ctx, f.eventID, "user-a")
        require.NoError(t, err)
        require.Equal(t, model.EntryStatusOffered, again.Status)
    })

    t.Run("degrades to waiting at sell-out", func(t *testing.T) {
        // 吃掉剩余容量
        _, err := f.finalizer.Finalize(ctx, f.eventID, "user-a", OutcomeCompleted)
        require.NoError(t, err)
        _, err = f.queue.RequestSpot(ctx, f.eventID, "user-c")
        require.NoError(t, err)
        _, err = f.finalizer.Finalize(ctx, f.eventID, "user-c", OutcomeCompleted)
        require.NoError(t, err)

        entry, err := f.queue.RequestAdditionalSpot(ctx, f.eventID, "user-a")
        require.NoError(t, err)
        require.Equal(t, model.EntryStatusWaiting, entry.Status)
        f.assertNoOversell(t)
    })
}

// 规格场景：totalTickets=2，两个并发请求都应获得 offer，第三个排队，
// 与到达次序无关（容量检查在活动事务内串行化）
func TestScenario_TwoTicketsThreeRequests(t *testing.T) {
    f := newFixture(t, 2)
    ctx := context.Background()

    statuses := map[model.EntryStatus]int{}
    for _, u := range []string{"user-a", "user-b", "user-c"} {
        entry, err := f.queue.RequestSpot(ctx, f.eventID, u)
        require.NoError(t, err)
        statuses[entry.Status]++
    }
    require.Equal(t, 2, statuses[model.EntryStatusOffered])
    require.Equal(t, 1, statuses[model.EntryStatusWaiting])

    st, err := f.queue.GetPosition(ctx, f.eventID, "user-c")
    require.NoError(t, err)
    require.Equal(t, 1, st.Position)
    f.assertNoOversell(t)
}
