package prometheus

import (
	"testing"
	"time"

	"github.com/DeepakkumarArumugam/dropwizard-prometheus/metrics"
)

func TestConvertRegistry(t *testing.T) {
	registry := metrics.NewRegistry()
	registry.GetOrRegisterCounter("jobs").Inc(7)
	registry.GetOrRegisterMeter("requests").Mark(3)
	if err := registry.Register("load", metrics.GaugeFunc(func() any { return 1.5 })); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	series := convertRegistry(registry, now, map[string]string{"env": "prod"}, nil)

	if len(series) != 3 {
		t.Fatalf("got %d series, want 3: %+v", len(series), series)
	}

	byName := map[string]float64{}
	for _, s := range series {
		if s.Sample.Time != now {
			t.Errorf("series timestamp = %v, want %v", s.Sample.Time, now)
		}
		var name, env string
		for _, l := range s.Labels {
			switch l.Name {
			case "__name__":
				name = l.Value
			case "env":
				env = l.Value
			}
		}
		if env != "prod" {
			t.Errorf("series %q missing const label env=prod: %+v", name, s.Labels)
		}
		byName[name] = s.Sample.Value
	}

	if byName["jobs"] != 7 {
		t.Errorf("jobs = %v, want 7", byName["jobs"])
	}
	if byName["requests_total"] != 3 {
		t.Errorf("requests_total = %v, want 3", byName["requests_total"])
	}
	if byName["load"] != 1.5 {
		t.Errorf("load = %v, want 1.5", byName["load"])
	}
}

func TestConvertRegistryTimerSeries(t *testing.T) {
	registry := metrics.NewRegistry()
	registry.GetOrRegisterTimer("latency").Update(time.Millisecond)

	series := convertRegistry(registry, time.Now(), nil, nil)

	// 6 quantile + 5 attr + count + 4 rate series.
	if len(series) != 16 {
		t.Fatalf("got %d series, want 16", len(series))
	}

	var quantiles, attrs, rates, counts int
	for _, s := range series {
		var name string
		labels := map[string]string{}
		for _, l := range s.Labels {
			if l.Name == "__name__" {
				name = l.Value
				continue
			}
			labels[l.Name] = l.Value
		}
		switch {
		case labels["quantile"] != "":
			quantiles++
		case labels["attr"] != "":
			attrs++
		case labels["rate"] != "":
			rates++
		case name == "latency_count":
			counts++
		}
	}
	if quantiles != 6 || attrs != 5 || rates != 4 || counts != 1 {
		t.Errorf("series breakdown = %d quantile, %d attr, %d rate, %d count; want 6/5/4/1",
			quantiles, attrs, rates, counts)
	}
}

func TestNewRemoteWriterValidation(t *testing.T) {
	if _, err := NewRemoteWriter(RemoteWriterConfig{URL: "http://x/api/v1/write"}); err == nil {
		t.Error("expected error for nil registry")
	}
	if _, err := NewRemoteWriter(RemoteWriterConfig{Registry: metrics.NewRegistry()}); err == nil {
		t.Error("expected error for empty URL")
	}
	w, err := NewRemoteWriter(RemoteWriterConfig{
		Registry: metrics.NewRegistry(),
		URL:      "http://x/api/v1/write",
	})
	if err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	w.Stop()
}
