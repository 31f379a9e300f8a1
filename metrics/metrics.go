// Package metrics provides Dropwizard-style instrumentation primitives:
// gauges, counters, meters, histograms and timers, owned by a Registry
// and read through small capability interfaces.
//
// All primitives are safe for concurrent use. Reads return point-in-time
// values; histograms and timers hand out immutable snapshots so that a
// consumer sees a consistent digest while updates continue.
package metrics

// Gauge exposes an instantaneous value of arbitrary type. Consumers decide
// how to interpret non-numeric values.
type Gauge interface {
	Value() any
}

// GaugeFunc adapts a function to the Gauge interface.
type GaugeFunc func() any

// Value implements Gauge.
func (f GaugeFunc) Value() any { return f() }

// Counting exposes a monotonically updated event count.
type Counting interface {
	Count() int64
}

// Stats is an immutable point-in-time statistical digest supporting
// ordered-statistic queries.
type Stats interface {
	// Quantile returns the estimated value at quantile q in [0, 1].
	Quantile(q float64) float64
	Min() float64
	Max() float64
	Mean() float64
	StdDev() float64
}

// Sampling exposes a statistical digest of recorded values.
type Sampling interface {
	Snapshot() Stats
}

// Metered exposes moving-average event rates, in events per second.
type Metered interface {
	Counting
	Rate1() float64
	Rate5() float64
	Rate15() float64
	RateMean() float64
}
