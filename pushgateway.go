package prometheus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DeepakkumarArumugam/dropwizard-prometheus/metrics"
)

// Sender delivers a rendered registry to a remote endpoint.
type Sender interface {
	Push(ctx context.Context, r metrics.Registry) error
}

// Pushgateway renders a registry to the text exposition format and pushes
// it to a Prometheus pushgateway under a job name.
type Pushgateway struct {
	base   string
	job    string
	client *http.Client
	logger *zap.Logger
}

var _ Sender = (*Pushgateway)(nil)

// PushgatewayOption customizes a Pushgateway.
type PushgatewayOption func(*Pushgateway)

// WithHTTPClient replaces the HTTP client used for pushes.
func WithHTTPClient(client *http.Client) PushgatewayOption {
	return func(p *Pushgateway) { p.client = client }
}

// WithResolver routes push connections through the given resolver so that
// DNS changes on the gateway host are picked up without process restarts.
func WithResolver(r *Resolver) PushgatewayOption {
	return func(p *Pushgateway) {
		p.client = &http.Client{
			Timeout:   p.client.Timeout,
			Transport: &http.Transport{DialContext: r.DialContext},
		}
	}
}

// WithPushLogger sets the logger used for push diagnostics.
func WithPushLogger(logger *zap.Logger) PushgatewayOption {
	return func(p *Pushgateway) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPushgateway creates a pushgateway sender. base is the gateway root
// URL, e.g. "http://pushgateway:9091".
func NewPushgateway(base, job string, opts ...PushgatewayOption) *Pushgateway {
	p := &Pushgateway{
		base:   strings.TrimRight(base, "/"),
		job:    job,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Push renders the registry and PUTs it to /metrics/job/<job>, replacing
// all metrics previously pushed under that job.
func (p *Pushgateway) Push(ctx context.Context, r metrics.Registry) error {
	var buf bytes.Buffer
	exporter := NewExporter(NewTextWriter(&buf), p.logger)
	if err := WriteRegistry(exporter, r); err != nil {
		return fmt.Errorf("rendering metrics: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, p.jobURL(), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", ContentType)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pushing metrics: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("pushgateway returned status %d", resp.StatusCode)
	}
	return nil
}

// Delete removes all metrics pushed under the job.
func (p *Pushgateway) Delete(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, p.jobURL(), nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("deleting pushed metrics: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("pushgateway returned status %d", resp.StatusCode)
	}
	return nil
}

func (p *Pushgateway) jobURL() string {
	return fmt.Sprintf("%s/metrics/job/%s", p.base, url.PathEscape(p.job))
}
