package dispatcher

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	callLogCapacity      = 200
	argumentSummaryLimit = 200
)

// CallLogEntry is one tool-call log entry: timestamp, name, truncated
// argument summary, duration, outcome.
type CallLogEntry struct {
	Timestamp       time.Time
	Name            string
	ArgumentSummary string
	DurationMS      int64
	Outcome         string
}

// callLog is a bounded-capacity ring buffer. A lightweight mutex around
// append and read is sufficient given the dashboard's refresh cadence.
type callLog struct {
	mu      sync.Mutex
	entries []CallLogEntry
	next    int
	full    bool
}

func newCallLog() *callLog {
	return &callLog{entries: make([]CallLogEntry, callLogCapacity)}
}

func (l *callLog) append(entry CallLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[l.next] = entry
	l.next = (l.next + 1) % callLogCapacity
	if l.next == 0 {
		l.full = true
	}
}

// recent returns up to n entries, newest first.
func (l *callLog) recent(n int) []CallLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.next
	if l.full {
		size = callLogCapacity
	}
	if n > size {
		n = size
	}
	out := make([]CallLogEntry, 0, n)
	for i := 0; i < n; i++ {
		idx := (l.next - 1 - i + callLogCapacity) % callLogCapacity
		out = append(out, l.entries[idx])
	}
	return out
}

// summarize builds a truncated, deterministic argument summary for the
// call log.
func summarize(params map[string]any, limit int) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k, params[k])
		if b.Len() >= limit {
			break
		}
	}
	out := b.String()
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
