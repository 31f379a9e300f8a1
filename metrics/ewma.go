package metrics

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// tickInterval is the fixed interval at which moving averages decay.
const tickInterval = 5 * time.Second

// ewma is an exponentially weighted moving average over a fixed tick
// interval, smoothed toward the rate of the last N minutes.
type ewma struct {
	alpha     float64
	uncounted atomic.Int64

	mu          sync.Mutex
	rate        float64 // events per second
	initialized bool
}

func newEWMA(minutes float64) *ewma {
	return &ewma{alpha: 1 - math.Exp(-tickInterval.Seconds()/60.0/minutes)}
}

// update records n events for the current interval.
func (e *ewma) update(n int64) {
	e.uncounted.Add(n)
}

// tick advances the average by one interval.
func (e *ewma) tick() {
	count := e.uncounted.Swap(0)
	instantRate := float64(count) / tickInterval.Seconds()

	e.mu.Lock()
	if e.initialized {
		e.rate += e.alpha * (instantRate - e.rate)
	} else {
		e.rate = instantRate
		e.initialized = true
	}
	e.mu.Unlock()
}

// currentRate returns the smoothed rate in events per second.
func (e *ewma) currentRate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rate
}
