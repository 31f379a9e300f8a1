package metrics

import (
	"math"
	"sync"

	"github.com/beorn7/perks/quantile"
)

// Histogram measures the statistical distribution of int64 values.
type Histogram interface {
	Counting
	Sampling
	Update(v int64)
}

// quantileTargets are the quantiles tracked with guaranteed precision.
// The allowed error tightens toward the tail, where estimates matter most.
var quantileTargets = map[float64]float64{
	0.5:   0.05,
	0.75:  0.01,
	0.95:  0.005,
	0.98:  0.002,
	0.99:  0.001,
	0.999: 0.0001,
}

// NewHistogram creates a histogram backed by a targeted quantile stream.
func NewHistogram() Histogram {
	return &histogram{stream: quantile.NewTargeted(quantileTargets)}
}

type histogram struct {
	mu         sync.Mutex
	stream     *quantile.Stream
	count      int64
	sum        float64
	sumSquares float64
	min        float64
	max        float64
}

// Update records a value.
func (h *histogram) Update(v int64) {
	f := float64(v)
	h.mu.Lock()
	h.stream.Insert(f)
	if h.count == 0 || f < h.min {
		h.min = f
	}
	if h.count == 0 || f > h.max {
		h.max = f
	}
	h.count++
	h.sum += f
	h.sumSquares += f * f
	h.mu.Unlock()
}

func (h *histogram) Count() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Snapshot returns an immutable digest of the values recorded so far.
func (h *histogram) Snapshot() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	stream := quantile.NewTargeted(quantileTargets)
	stream.Merge(h.stream.Samples())

	var mean, stddev float64
	if h.count > 0 {
		mean = h.sum / float64(h.count)
	}
	if h.count > 1 {
		// Sample variance; guard against tiny negative values from
		// floating point cancellation.
		variance := (h.sumSquares - float64(h.count)*mean*mean) / float64(h.count-1)
		stddev = math.Sqrt(math.Max(0, variance))
	}

	return &streamSnapshot{
		stream: stream,
		min:    h.min,
		max:    h.max,
		mean:   mean,
		stddev: stddev,
	}
}

// streamSnapshot is a Stats implementation over a private copy of the
// quantile stream, detached from further histogram updates.
type streamSnapshot struct {
	mu     sync.Mutex
	stream *quantile.Stream
	min    float64
	max    float64
	mean   float64
	stddev float64
}

func (s *streamSnapshot) Quantile(q float64) float64 {
	// Query compacts the stream internally, hence the lock.
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream.Query(q)
}

func (s *streamSnapshot) Min() float64 { return s.min }

func (s *streamSnapshot) Max() float64 { return s.max }

func (s *streamSnapshot) Mean() float64 { return s.mean }

func (s *streamSnapshot) StdDev() float64 { return s.stddev }
