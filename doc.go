// Package prometheus translates Dropwizard-style application metrics
// (gauges, counters, histograms, meters, timers) into the Prometheus text
// exposition format.
//
// Design goals:
//   - Faithful Dropwizard encoding: counters surface as gauges, meters as
//     _total counters, histograms and timers as summaries with quantile,
//     attribute and rate samples
//   - Small capability interfaces instead of a metric class hierarchy
//   - Output through a pluggable TextSink so the same encoding drives the
//     scrape handler, the pushgateway sender and the remote-write bridge
//
// Basic usage:
//
//	registry := metrics.NewRegistry()
//	requests := registry.GetOrRegisterMeter("requests")
//	latency := registry.GetOrRegisterTimer("request_duration")
//
//	http.Handle("/metrics", prometheus.NewHandler(registry, logger))
//
//	requests.Mark(1)
//	latency.Update(42 * time.Millisecond)
package prometheus
