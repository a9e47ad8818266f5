package dispatcher

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// stats tracks per-tool call counts, both for the dashboard's top-N view
// and for Prometheus scraping. The in-memory map backs the dashboard
// (cheap, no scrape dependency); the CounterVec is exported on /metrics.
type stats struct {
	mu     sync.Mutex
	counts map[string]int64

	calls *prometheus.CounterVec
}

func newStats(registerer prometheus.Registerer) *stats {
	s := &stats{
		counts: make(map[string]int64),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ableton_bridge",
			Subsystem: "dispatcher",
			Name:      "tool_calls_total",
			Help:      "Total tool calls by name and outcome.",
		}, []string{"tool", "outcome"}),
	}
	if registerer != nil {
		registerer.MustRegister(s.calls)
	}
	return s
}

func (s *stats) record(name, outcome string) {
	s.mu.Lock()
	s.counts[name]++
	s.mu.Unlock()
	s.calls.WithLabelValues(name, outcome).Inc()
}

// ToolCount pairs a tool name with its observed call count.
type ToolCount struct {
	Name  string
	Count int64
}

// top returns up to n tools by call count, descending.
func (s *stats) top(n int) []ToolCount {
	s.mu.Lock()
	out := make([]ToolCount, 0, len(s.counts))
	for name, count := range s.counts {
		out = append(out, ToolCount{Name: name, Count: count})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}
