package metrics

import "time"

// Timer measures both the rate of events and the distribution of their
// durations. Durations are recorded in nanoseconds.
type Timer interface {
	Metered
	Sampling
	Update(d time.Duration)
	Time(fn func())
}

// NewTimer creates a new timer.
func NewTimer() Timer {
	return newTimer(time.Now)
}

type timer struct {
	histogram Histogram
	meter     *meter
}

func newTimer(now func() time.Time) *timer {
	return &timer{
		histogram: NewHistogram(),
		meter:     newMeter(now),
	}
}

// Update records a completed event of the given duration. Negative
// durations are ignored.
func (t *timer) Update(d time.Duration) {
	if d < 0 {
		return
	}
	t.histogram.Update(int64(d))
	t.meter.Mark(1)
}

// Time records the duration of fn.
func (t *timer) Time(fn func()) {
	start := t.meter.now()
	fn()
	t.Update(t.meter.now().Sub(start))
}

func (t *timer) Count() int64 { return t.meter.Count() }

func (t *timer) Rate1() float64 { return t.meter.Rate1() }

func (t *timer) Rate5() float64 { return t.meter.Rate5() }

func (t *timer) Rate15() float64 { return t.meter.Rate15() }

func (t *timer) RateMean() float64 { return t.meter.RateMean() }

func (t *timer) Snapshot() Stats { return t.histogram.Snapshot() }
