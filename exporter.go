package prometheus

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/DeepakkumarArumugam/dropwizard-prometheus/metrics"
)

// TextSink receives the rendered pieces of a metric block. Implementations
// are responsible for serializing concurrent writers; the Exporter is not.
type TextSink interface {
	WriteHelp(name, help string) error
	WriteType(name string, t MetricType) error
	WriteSample(name string, labels map[string]string, value float64) error
}

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9:_]`)

// SanitizeMetricName replaces every character outside [a-zA-Z0-9:_] with an
// underscore, one for one.
func SanitizeMetricName(name string) string {
	return invalidNameChars.ReplaceAllString(name, "_")
}

// exportQuantiles are the summary quantiles emitted for histograms and
// timers, in emission order.
var exportQuantiles = []float64{0.5, 0.75, 0.95, 0.98, 0.99, 0.999}

// timerFactor converts timer snapshot values from nanoseconds to seconds.
const timerFactor = 1.0 / float64(time.Second)

// Exporter writes metrics to a TextSink, one metric block per call: a HELP
// line, a TYPE line, then the samples for that metric. Any sink error
// aborts the current block and is returned unchanged.
type Exporter struct {
	sink   TextSink
	logger *zap.Logger
}

// NewExporter creates an exporter writing to sink. The logger receives
// non-fatal warnings such as skipped gauges; nil disables logging.
func NewExporter(sink TextSink, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{sink: sink, logger: logger}
}

// WriteMetric dispatches m to the writer matching its capabilities.
// Unknown kinds are skipped with a warning.
func (e *Exporter) WriteMetric(name string, m metrics.Metric) error {
	switch m := m.(type) {
	case metrics.Timer:
		return e.WriteTimer(name, m)
	case metrics.Histogram:
		return e.WriteHistogram(name, m)
	case metrics.Meter:
		return e.WriteMeter(name, m)
	case metrics.Counter:
		return e.WriteCounter(name, m)
	case metrics.Gauge:
		return e.WriteGauge(name, m)
	default:
		e.logger.Warn("skipping metric of unknown kind",
			zap.String("metric", name),
			zap.String("type", fmt.Sprintf("%T", m)))
		return nil
	}
}

// WriteGauge writes a gauge's current value. Values that are neither
// numeric nor boolean cause the whole metric to be skipped with a warning;
// nothing is emitted for it.
func (e *Exporter) WriteGauge(name string, g metrics.Gauge) error {
	raw := g.Value()
	value, ok := gaugeValue(raw)
	if !ok {
		e.logger.Warn("skipping gauge with unsupported value type",
			zap.String("metric", name),
			zap.String("type", fmt.Sprintf("%T", raw)))
		return nil
	}

	sanitized := SanitizeMetricName(name)
	if err := e.sink.WriteHelp(sanitized, helpMessage(name, "gauge")); err != nil {
		return err
	}
	if err := e.sink.WriteType(sanitized, Gauge); err != nil {
		return err
	}
	return e.sink.WriteSample(sanitized, nil, value)
}

// WriteCounter writes a counter's running total. The total is surfaced as
// an instantaneous gauge value rather than a Prometheus counter.
func (e *Exporter) WriteCounter(name string, c metrics.Counting) error {
	sanitized := SanitizeMetricName(name)
	if err := e.sink.WriteHelp(sanitized, helpMessage(name, "counter")); err != nil {
		return err
	}
	if err := e.sink.WriteType(sanitized, Gauge); err != nil {
		return err
	}
	return e.sink.WriteSample(sanitized, nil, float64(c.Count()))
}

// WriteMeter writes a meter's event count as a counter named <name>_total.
// Rate samples are only emitted for timers.
func (e *Exporter) WriteMeter(name string, m metrics.Metered) error {
	sanitized := SanitizeMetricName(name) + "_total"
	if err := e.sink.WriteHelp(sanitized, helpMessage(name, "meter")); err != nil {
		return err
	}
	if err := e.sink.WriteType(sanitized, Counter); err != nil {
		return err
	}
	return e.sink.WriteSample(sanitized, nil, float64(m.Count()))
}

// WriteHistogram writes a histogram snapshot as a summary.
func (e *Exporter) WriteHistogram(name string, h metrics.Histogram) error {
	return e.writeSnapshotAndCount(name, h.Snapshot(), h.Count(), 1.0, Summary, helpMessage(name, "histogram"))
}

// WriteTimer writes a timer snapshot as a summary with durations converted
// from nanoseconds to seconds, followed by its moving-average rate samples
// under the same name.
func (e *Exporter) WriteTimer(name string, t metrics.Timer) error {
	if err := e.writeSnapshotAndCount(name, t.Snapshot(), t.Count(), timerFactor, Summary, helpMessage(name, "timer")); err != nil {
		return err
	}
	return e.writeMetered(name, t)
}

func (e *Exporter) writeSnapshotAndCount(name string, snapshot metrics.Stats, count int64, factor float64, t MetricType, help string) error {
	sanitized := SanitizeMetricName(name)
	if err := e.sink.WriteHelp(sanitized, help); err != nil {
		return err
	}
	if err := e.sink.WriteType(sanitized, t); err != nil {
		return err
	}
	for _, q := range exportQuantiles {
		labels := map[string]string{"quantile": formatQuantile(q)}
		if err := e.sink.WriteSample(sanitized, labels, snapshot.Quantile(q)*factor); err != nil {
			return err
		}
	}
	// Attribute samples carry the snapshot's raw values; only the quantile
	// samples above are unit-converted.
	attrs := []struct {
		name  string
		value float64
	}{
		{"min", snapshot.Min()},
		{"max", snapshot.Max()},
		{"median", snapshot.Quantile(0.5)},
		{"mean", snapshot.Mean()},
		{"stddev", snapshot.StdDev()},
	}
	for _, a := range attrs {
		if err := e.sink.WriteSample(sanitized, map[string]string{"attr": a.name}, a.value); err != nil {
			return err
		}
	}
	return e.sink.WriteSample(sanitized+"_count", nil, float64(count))
}

func (e *Exporter) writeMetered(name string, m metrics.Metered) error {
	sanitized := SanitizeMetricName(name)
	rates := []struct {
		label string
		value float64
	}{
		{"m1", m.Rate1()},
		{"m5", m.Rate5()},
		{"m15", m.Rate15()},
		{"mean", m.RateMean()},
	}
	for _, r := range rates {
		if err := e.sink.WriteSample(sanitized, map[string]string{"rate": r.label}, r.value); err != nil {
			return err
		}
	}
	return nil
}

// WriteRegistry writes every metric in the registry in sorted name order.
// The first sink error aborts the walk.
func WriteRegistry(e *Exporter, r metrics.Registry) error {
	var err error
	r.Each(func(name string, m metrics.Metric) {
		if err != nil {
			return
		}
		err = e.WriteMetric(name, m)
	})
	return err
}

// gaugeValue coerces a gauge value to float64. Booleans map to 1 and 0.
func gaugeValue(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case time.Duration:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func formatQuantile(q float64) string {
	return strconv.FormatFloat(q, 'g', -1, 64)
}

func helpMessage(name, kind string) string {
	return fmt.Sprintf("Generated from Dropwizard metric import (metric=%s, type=%s)", name, kind)
}
