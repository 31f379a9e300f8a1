package prometheus

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ContentType is the HTTP content type of the text exposition format.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

var (
	helpEscaper  = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
	labelEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, `"`, `\"`)
)

// TextWriter is a TextSink rendering the Prometheus text exposition format
// (version 0.0.4) to an io.Writer. It performs no buffering of its own.
type TextWriter struct {
	w io.Writer
}

var _ TextSink = (*TextWriter)(nil)

// NewTextWriter creates a TextWriter emitting to w.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// WriteHelp emits a "# HELP <name> <help>" line.
func (t *TextWriter) WriteHelp(name, help string) error {
	_, err := fmt.Fprintf(t.w, "# HELP %s %s\n", name, helpEscaper.Replace(help))
	return err
}

// WriteType emits a "# TYPE <name> <type>" line.
func (t *TextWriter) WriteType(name string, mt MetricType) error {
	_, err := fmt.Fprintf(t.w, "# TYPE %s %s\n", name, mt)
	return err
}

// WriteSample emits one sample line. Labels are written in sorted key
// order; an empty label set omits the braces.
func (t *TextWriter) WriteSample(name string, labels map[string]string, value float64) error {
	var b strings.Builder
	b.WriteString(name)
	if len(labels) > 0 {
		keys := make([]string, 0, len(labels))
		for k := range labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(k)
			b.WriteString(`="`)
			b.WriteString(labelEscaper.Replace(labels[k]))
			b.WriteByte('"')
		}
		b.WriteByte('}')
	}
	b.WriteByte(' ')
	b.WriteString(formatValue(value))
	b.WriteByte('\n')
	_, err := io.WriteString(t.w, b.String())
	return err
}

// formatValue renders a sample value the way Prometheus expects, including
// +Inf, -Inf and NaN.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
