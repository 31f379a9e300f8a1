package metrics

import (
	"fmt"
	"sort"
	"sync"
)

// Metric is one of the metric kinds owned by a Registry: Gauge, Counter,
// Meter, Histogram or Timer.
type Metric interface{}

// Registry is a named collection of metrics.
type Registry interface {
	// Register adds a metric under the given name, failing if the name
	// is already taken.
	Register(name string, m Metric) error

	// Get returns the metric registered under name, or nil.
	Get(name string) Metric

	// Unregister removes the metric registered under name, if any.
	Unregister(name string)

	// Each calls fn for every registered metric, in sorted name order.
	Each(fn func(name string, m Metric))

	// Names returns all registered names in sorted order.
	Names() []string

	GetOrRegisterCounter(name string) Counter
	GetOrRegisterMeter(name string) Meter
	GetOrRegisterHistogram(name string) Histogram
	GetOrRegisterTimer(name string) Timer
}

// NewRegistry creates an empty registry.
func NewRegistry() Registry {
	return &registry{metrics: make(map[string]Metric)}
}

type registry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
}

func (r *registry) Register(name string, m Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.metrics[name]; exists {
		return fmt.Errorf("metric %q is already registered", name)
	}
	r.metrics[name] = m
	return nil
}

func (r *registry) Get(name string) Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metrics[name]
}

func (r *registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.metrics, name)
	r.mu.Unlock()
}

// Each snapshots the registered metrics before iterating so that fn may
// touch the registry without deadlocking.
func (r *registry) Each(fn func(name string, m Metric)) {
	r.mu.RLock()
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	snapshot := make([]Metric, len(names))
	for i, name := range names {
		snapshot[i] = r.metrics[name]
	}
	r.mu.RUnlock()

	for i, name := range names {
		fn(name, snapshot[i])
	}
}

func (r *registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *registry) GetOrRegisterCounter(name string) Counter {
	return r.getOrRegister(name, func() Metric { return NewCounter() }).(Counter)
}

func (r *registry) GetOrRegisterMeter(name string) Meter {
	return r.getOrRegister(name, func() Metric { return NewMeter() }).(Meter)
}

func (r *registry) GetOrRegisterHistogram(name string) Histogram {
	return r.getOrRegister(name, func() Metric { return NewHistogram() }).(Histogram)
}

func (r *registry) GetOrRegisterTimer(name string) Timer {
	return r.getOrRegister(name, func() Metric { return NewTimer() }).(Timer)
}

// getOrRegister returns the metric registered under name, creating it via
// build when absent. Requesting an existing name as a different kind
// panics on the caller's type assertion; mixing kinds under one name is a
// programming error.
func (r *registry) getOrRegister(name string, build func() Metric) Metric {
	r.mu.RLock()
	m, exists := r.metrics[name]
	r.mu.RUnlock()
	if exists {
		return m
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, exists = r.metrics[name]; exists {
		return m
	}
	m = build()
	r.metrics[name] = m
	return m
}
