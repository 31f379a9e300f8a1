package prometheus

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/eryajf/promwrite"
	"go.uber.org/zap"

	"github.com/DeepakkumarArumugam/dropwizard-prometheus/metrics"
)

// RemoteWriterConfig defines the configuration for a remote-write bridge.
type RemoteWriterConfig struct {
	// Registry holds the metrics to write.
	Registry metrics.Registry

	// URL is the remote write endpoint,
	// e.g. "http://prometheus:9090/api/v1/write".
	URL string

	// Interval between writes. Defaults to 15 seconds.
	Interval time.Duration

	// ConstLabels are attached to every series, e.g. instance identity.
	ConstLabels map[string]string

	// Optional logger
	Logger *zap.Logger
}

// RemoteWriter periodically converts a registry to remote-write time
// series and ships them to a Prometheus remote write endpoint. The series
// carry the same names and labels as the text exposition encoding.
type RemoteWriter struct {
	config RemoteWriterConfig
	client *promwrite.Client
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRemoteWriter creates a remote writer. Start must be called to begin
// the write loop; WriteOnce writes immediately.
func NewRemoteWriter(config RemoteWriterConfig) (*RemoteWriter, error) {
	if config.Registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if config.URL == "" {
		return nil, fmt.Errorf("remote write URL cannot be empty")
	}
	if config.Interval <= 0 {
		config.Interval = 15 * time.Second
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RemoteWriter{
		config: config,
		client: promwrite.NewClient(config.URL),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start launches the periodic write loop.
func (w *RemoteWriter) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.config.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(w.ctx, w.config.Interval)
				if err := w.WriteOnce(ctx); err != nil {
					w.config.Logger.Error("failed to write metrics", zap.Error(err))
				}
				cancel()
			case <-w.ctx.Done():
				return
			}
		}
	}()
}

// WriteOnce converts the registry and performs a single remote write.
func (w *RemoteWriter) WriteOnce(ctx context.Context) error {
	series := convertRegistry(w.config.Registry, time.Now(), w.config.ConstLabels, w.config.Logger)
	if len(series) == 0 {
		return nil
	}
	_, err := w.client.Write(ctx, &promwrite.WriteRequest{TimeSeries: series})
	if err != nil {
		return fmt.Errorf("writing time series: %w", err)
	}
	return nil
}

// Stop halts the write loop and waits for it to exit.
func (w *RemoteWriter) Stop() {
	w.cancel()
	w.wg.Wait()
}

// convertRegistry renders the registry through the exporter into time
// series instead of text lines, so both outputs stay encoded identically.
func convertRegistry(r metrics.Registry, now time.Time, constLabels map[string]string, logger *zap.Logger) []promwrite.TimeSeries {
	sink := &seriesSink{now: now, constLabels: constLabels}
	// The sink cannot fail, so the walk cannot either.
	_ = WriteRegistry(NewExporter(sink, logger), r)
	return sink.series
}

// seriesSink is a TextSink collecting samples as remote-write time series.
// HELP and TYPE metadata has no remote-write representation and is
// discarded.
type seriesSink struct {
	now         time.Time
	constLabels map[string]string
	series      []promwrite.TimeSeries
}

var _ TextSink = (*seriesSink)(nil)

func (s *seriesSink) WriteHelp(name, help string) error { return nil }

func (s *seriesSink) WriteType(name string, t MetricType) error { return nil }

func (s *seriesSink) WriteSample(name string, labels map[string]string, value float64) error {
	out := make([]promwrite.Label, 0, 1+len(s.constLabels)+len(labels))
	out = append(out, promwrite.Label{Name: "__name__", Value: name})
	for _, k := range sortedKeys(s.constLabels) {
		out = append(out, promwrite.Label{Name: k, Value: s.constLabels[k]})
	}
	for _, k := range sortedKeys(labels) {
		out = append(out, promwrite.Label{Name: k, Value: labels[k]})
	}

	s.series = append(s.series, promwrite.TimeSeries{
		Labels: out,
		Sample: promwrite.Sample{Time: s.now, Value: value},
	})
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
