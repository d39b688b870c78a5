package clock

import "time"

// Clock 注入时间源，过期判定在测试里才可控
type Clock interface {
    Now() time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now.
func NewSystem() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Fixed 固定时间钟，测试用
type Fixed struct {
    Instant time.Time
}

// NewFixed returns a clock that always reports the same instant.
func NewFixed(t time.Time) *Fixed { return &Fixed{Instant: t.UTC()} }

func (f *Fixed) Now() time.Time { return f.Instant }

// Advance 向前拨动固定钟
func (f *Fixed) Advance(d time.Duration) { f.Instant = f.Instant.Add(d) }
