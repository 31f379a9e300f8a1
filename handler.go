package prometheus

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"github.com/DeepakkumarArumugam/dropwizard-prometheus/metrics"
)

// Handler serves a point-in-time rendering of a registry in the text
// exposition format, for scraping by a Prometheus-compatible collector.
type Handler struct {
	registry metrics.Registry
	logger   *zap.Logger
}

var _ http.Handler = (*Handler)(nil)

// NewHandler creates a scrape handler for the registry. nil disables
// logging.
func NewHandler(registry metrics.Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{registry: registry, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Render into a buffer first so a failed export never produces a
	// half-written 200 response.
	var buf bytes.Buffer
	exporter := NewExporter(NewTextWriter(&buf), h.logger)
	if err := WriteRegistry(exporter, h.registry); err != nil {
		h.logger.Error("failed to render metrics", zap.Error(err))
		http.Error(w, "failed to render metrics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ContentType)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("failed to write scrape response", zap.Error(err))
	}
}
