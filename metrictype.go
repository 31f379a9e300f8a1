package prometheus

// MetricType is the Prometheus type token emitted on a TYPE line.
type MetricType int

const (
	Gauge MetricType = iota
	Counter
	Summary
)

func (t MetricType) String() string {
	switch t {
	case Counter:
		return "counter"
	case Summary:
		return "summary"
	default:
		return "gauge"
	}
}
