package prometheus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DeepakkumarArumugam/dropwizard-prometheus/metrics"
)

// ReporterConfig defines the configuration for a periodic push reporter.
type ReporterConfig struct {
	// Registry holds the metrics to report.
	Registry metrics.Registry

	// Sender delivers each report, e.g. a Pushgateway.
	Sender Sender

	// Interval between reports. Defaults to 15 seconds.
	Interval time.Duration

	// Timeout applied to each push. Defaults to the interval.
	Timeout time.Duration

	// Optional logger
	Logger *zap.Logger
}

// Reporter periodically pushes a registry through a Sender until stopped.
type Reporter struct {
	config ReporterConfig
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReporter creates a reporter. Start must be called to begin reporting.
func NewReporter(config ReporterConfig) (*Reporter, error) {
	if config.Registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if config.Sender == nil {
		return nil, fmt.Errorf("sender cannot be nil")
	}
	if config.Interval <= 0 {
		config.Interval = 15 * time.Second
	}
	if config.Timeout <= 0 {
		config.Timeout = config.Interval
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Reporter{config: config, ctx: ctx, cancel: cancel}, nil
}

// Start launches the reporting loop.
func (r *Reporter) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.config.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := r.Report(); err != nil {
					r.config.Logger.Error("failed to push metrics", zap.Error(err))
				}
			case <-r.ctx.Done():
				return
			}
		}
	}()
}

// Report pushes the registry once, immediately.
func (r *Reporter) Report() error {
	ctx, cancel := context.WithTimeout(r.ctx, r.config.Timeout)
	defer cancel()
	return r.config.Sender.Push(ctx, r.config.Registry)
}

// Stop halts the reporting loop and waits for it to exit.
func (r *Reporter) Stop() {
	r.cancel()
	r.wg.Wait()
}
