package metrics

import (
	"sync/atomic"
	"time"
)

// Meter measures the rate of events over time, keeping a total count plus
// 1-, 5- and 15-minute exponentially weighted moving averages.
type Meter interface {
	Metered
	Mark(n int64)
}

// NewMeter creates a new meter.
func NewMeter() Meter {
	return newMeter(time.Now)
}

type meter struct {
	count     atomic.Int64
	m1        *ewma
	m5        *ewma
	m15       *ewma
	startTime time.Time
	lastTick  atomic.Int64 // unix nanos of the last completed tick
	now       func() time.Time
}

func newMeter(now func() time.Time) *meter {
	start := now()
	m := &meter{
		m1:        newEWMA(1),
		m5:        newEWMA(5),
		m15:       newEWMA(15),
		startTime: start,
		now:       now,
	}
	m.lastTick.Store(start.UnixNano())
	return m
}

// Mark records the occurrence of n events.
func (m *meter) Mark(n int64) {
	m.tickIfNecessary()
	m.count.Add(n)
	m.m1.update(n)
	m.m5.update(n)
	m.m15.update(n)
}

func (m *meter) Count() int64 { return m.count.Load() }

func (m *meter) Rate1() float64 {
	m.tickIfNecessary()
	return m.m1.currentRate()
}

func (m *meter) Rate5() float64 {
	m.tickIfNecessary()
	return m.m5.currentRate()
}

func (m *meter) Rate15() float64 {
	m.tickIfNecessary()
	return m.m15.currentRate()
}

// RateMean returns the mean rate since the meter was created.
func (m *meter) RateMean() float64 {
	count := m.count.Load()
	if count == 0 {
		return 0
	}
	elapsed := m.now().Sub(m.startTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(count) / elapsed
}

// tickIfNecessary catches the moving averages up with elapsed intervals.
// The CAS on lastTick ensures only one caller replays the missed ticks.
func (m *meter) tickIfNecessary() {
	old := m.lastTick.Load()
	now := m.now().UnixNano()
	age := now - old
	if age < int64(tickInterval) {
		return
	}
	newTick := now - age%int64(tickInterval)
	if !m.lastTick.CompareAndSwap(old, newTick) {
		return
	}
	for ticks := age / int64(tickInterval); ticks > 0; ticks-- {
		m.m1.tick()
		m.m5.tick()
		m.m15.tick()
	}
}
