package metrics

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// runtimeSampler caches runtime.MemStats so that a scrape touching many
// runtime gauges pays for a single ReadMemStats stop-the-world.
type runtimeSampler struct {
	mu   sync.Mutex
	last time.Time
	ms   runtime.MemStats
}

func (s *runtimeSampler) memStats() runtime.MemStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if time.Since(s.last) > time.Second {
		runtime.ReadMemStats(&s.ms)
		s.last = time.Now()
	}
	return s.ms
}

// RegisterRuntimeMemStats registers gauges exposing Go runtime memory and
// scheduler statistics, plus process RSS and open file descriptor counts
// where /proc is available.
func RegisterRuntimeMemStats(r Registry) error {
	sampler := &runtimeSampler{}

	gauges := map[string]GaugeFunc{
		"runtime_memory_alloc_bytes":       func() any { return sampler.memStats().Alloc },
		"runtime_memory_sys_bytes":         func() any { return sampler.memStats().Sys },
		"runtime_memory_heap_alloc_bytes":  func() any { return sampler.memStats().HeapAlloc },
		"runtime_memory_heap_inuse_bytes":  func() any { return sampler.memStats().HeapInuse },
		"runtime_memory_heap_sys_bytes":    func() any { return sampler.memStats().HeapSys },
		"runtime_memory_stack_inuse_bytes": func() any { return sampler.memStats().StackInuse },
		"runtime_memory_stack_sys_bytes":   func() any { return sampler.memStats().StackSys },
		"runtime_gc_runs":                  func() any { return sampler.memStats().NumGC },
		"runtime_gc_pause_total_ns":        func() any { return sampler.memStats().PauseTotalNs },
		"runtime_goroutines":               func() any { return runtime.NumGoroutine() },
		"runtime_memory_rss_bytes":         func() any { return processRSS() },
		"runtime_open_file_descriptors":    func() any { return openFileDescriptors() },
	}

	for name, g := range gauges {
		if err := r.Register(name, g); err != nil {
			return err
		}
	}
	return nil
}

// processRSS returns the resident set size in bytes, or 0 when
// /proc/self/status is unavailable.
func processRSS() uint64 {
	data, err := os.ReadFile("/proc/self/status")
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			if kb, err := strconv.ParseUint(fields[1], 10, 64); err == nil {
				return kb * 1024
			}
		}
	}
	return 0
}

// openFileDescriptors returns the number of open file descriptors, or 0
// when /proc/self/fd is unavailable.
func openFileDescriptors() uint64 {
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		return 0
	}
	return uint64(len(entries))
}
