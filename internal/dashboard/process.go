package dashboard

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// startedAt is stamped once at package init so the dashboard can report
// process uptime without threading a clock through every constructor.
var startedAt = time.Now()

// processStats reports this process's resident memory and live goroutine
// count, surfaced on the status endpoint so an operator can tell a
// leaking bridge from a healthy one without attaching a profiler.
func processStats() (rssBytes uint64, goroutines int, uptime time.Duration) {
	goroutines = runtime.NumGoroutine()
	uptime = time.Since(startedAt)

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, goroutines, uptime
	}
	mem, err := proc.MemoryInfo()
	if err != nil || mem == nil {
		return 0, goroutines, uptime
	}
	return mem.RSS, goroutines, uptime
}
