package metrics

import "sync/atomic"

// Counter is an incrementing and decrementing total.
type Counter interface {
	Counting
	Inc(delta int64)
	Dec(delta int64)
	Clear()
}

// NewCounter creates a new counter starting at zero.
func NewCounter() Counter {
	return &counter{}
}

type counter struct {
	count atomic.Int64
}

func (c *counter) Inc(delta int64) { c.count.Add(delta) }

func (c *counter) Dec(delta int64) { c.count.Add(-delta) }

func (c *counter) Clear() { c.count.Store(0) }

func (c *counter) Count() int64 { return c.count.Load() }
