package prometheus

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestTextWriterHelpAndType(t *testing.T) {
	var b strings.Builder
	w := NewTextWriter(&b)

	if err := w.WriteHelp("requests", "Total requests"); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteType("requests", Counter); err != nil {
		t.Fatal(err)
	}

	want := "# HELP requests Total requests\n# TYPE requests counter\n"
	if b.String() != want {
		t.Errorf("got %q, want %q", b.String(), want)
	}
}

func TestTextWriterHelpEscaping(t *testing.T) {
	var b strings.Builder
	w := NewTextWriter(&b)

	if err := w.WriteHelp("m", "line\nbreak and back\\slash"); err != nil {
		t.Fatal(err)
	}
	want := "# HELP m line\\nbreak and back\\\\slash\n"
	if b.String() != want {
		t.Errorf("got %q, want %q", b.String(), want)
	}
}

func TestTextWriterSample(t *testing.T) {
	tests := []struct {
		name   string
		labels map[string]string
		value  float64
		want   string
	}{
		{"g", nil, 42, "g 42\n"},
		{"g", map[string]string{}, 0.5, "g 0.5\n"},
		{"s", map[string]string{"quantile": "0.99"}, 1.25, `s{quantile="0.99"} 1.25` + "\n"},
		{"s", map[string]string{"b": "2", "a": "1"}, 3, `s{a="1",b="2"} 3` + "\n"},
		{"inf", nil, math.Inf(1), "inf +Inf\n"},
		{"quoted", map[string]string{"k": `va"lue`}, 1, `quoted{k="va\"lue"} 1` + "\n"},
	}
	for _, tt := range tests {
		var b strings.Builder
		w := NewTextWriter(&b)
		if err := w.WriteSample(tt.name, tt.labels, tt.value); err != nil {
			t.Fatal(err)
		}
		if b.String() != tt.want {
			t.Errorf("WriteSample(%q, %v, %v) = %q, want %q", tt.name, tt.labels, tt.value, b.String(), tt.want)
		}
	}
}

type brokenWriter struct {
	err error
}

func (w brokenWriter) Write([]byte) (int, error) { return 0, w.err }

func TestTextWriterPropagatesWriteErrors(t *testing.T) {
	ioErr := errors.New("disk full")
	w := NewTextWriter(brokenWriter{err: ioErr})

	if err := w.WriteHelp("m", "h"); !errors.Is(err, ioErr) {
		t.Errorf("WriteHelp error = %v, want %v", err, ioErr)
	}
	if err := w.WriteType("m", Gauge); !errors.Is(err, ioErr) {
		t.Errorf("WriteType error = %v, want %v", err, ioErr)
	}
	if err := w.WriteSample("m", nil, 1); !errors.Is(err, ioErr) {
		t.Errorf("WriteSample error = %v, want %v", err, ioErr)
	}
}
