package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// defaultWorkerSlots bounds the worker pool to a fixed number of
// concurrent handlers rather than leaving it unbounded per call.
const defaultWorkerSlots = 32

// Dispatcher routes agent tool calls to registered handlers: validate,
// check readiness, execute on the worker pool, wrap in the uniform
// envelope, and record the call.
type Dispatcher struct {
	registry *Registry
	caps     CapabilityProvider
	logger   *zap.Logger

	sem *semaphore.Weighted
	log *callLog

	stats   *stats
	version string
}

// Options configures a Dispatcher beyond its mandatory dependencies.
type Options struct {
	WorkerSlots int64
	Version     string
}

// New constructs a Dispatcher bound to registry and caps. registerer may
// be nil, in which case per-tool counters are tracked in-memory only
// (used by tests) and not exported to Prometheus.
func New(registry *Registry, caps CapabilityProvider, logger *zap.Logger, registerer prometheus.Registerer, opts Options) *Dispatcher {
	slots := opts.WorkerSlots
	if slots <= 0 {
		slots = defaultWorkerSlots
	}
	return &Dispatcher{
		registry: registry,
		caps:     caps,
		logger:   logger,
		sem:      semaphore.NewWeighted(slots),
		log:      newCallLog(),
		stats:    newStats(registerer),
		version:  opts.Version,
	}
}

// Dispatch runs the named tool against params and returns its uniform
// JSON envelope: log start, validate, readiness check, execute on the
// worker pool, wrap, log outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, params map[string]any) string {
	start := time.Now()
	summary := summarize(params, argumentSummaryLimit)

	env := d.dispatch(ctx, name, params)

	d.log.append(CallLogEntry{
		Timestamp:       start,
		Name:            name,
		ArgumentSummary: summary,
		DurationMS:      time.Since(start).Milliseconds(),
		Outcome:         env.Status,
	})
	d.stats.record(name, env.Status)

	out, err := env.JSON()
	if err != nil {
		// Encoding the envelope itself failed; fall back to a minimal
		// hand-built error string so the caller always gets valid JSON.
		return fmt.Sprintf(`{"status":"error","kind":"Internal","message":%q}`, err.Error())
	}
	return out
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, params map[string]any) Envelope {
	spec, ok := d.registry.Get(name)
	if !ok {
		return errorEnvelope("", errUnknownTool(name))
	}

	if spec.Validator != nil {
		if err := spec.Validator(params); err != nil {
			return errorEnvelope(spec.ErrorPrefix, err)
		}
	}

	if spec.Needs.DAW && !d.caps.DAWConnected() {
		return errorEnvelope(spec.ErrorPrefix, bridgeerr.New(bridgeerr.NotReady, "DAW is not connected"))
	}
	if spec.Needs.Bridge && !d.caps.BridgeConnected(ctx) {
		return errorEnvelope(spec.ErrorPrefix, bridgeerr.New(bridgeerr.NotReady, "bridge is not connected"))
	}
	if spec.Needs.Catalog && !d.caps.CatalogPopulated() {
		return errorEnvelope(spec.ErrorPrefix, bridgeerr.New(bridgeerr.NotReady, "catalog is not populated"))
	}

	if err := d.sem.Acquire(ctx, 1); err != nil {
		return errorEnvelope(spec.ErrorPrefix, bridgeerr.Wrap(bridgeerr.Internal, "worker pool unavailable", err))
	}
	defer d.sem.Release(1)

	result, err := d.runHandler(ctx, spec, params)
	if err != nil {
		return errorEnvelope(spec.ErrorPrefix, err)
	}
	return successEnvelope("ok", result)
}

// runHandler executes the handler, recovering from panics so one
// misbehaving tool never takes down the dispatcher or other concurrent
// calls.
func (d *Dispatcher) runHandler(ctx context.Context, spec ToolSpec, params map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if d.logger != nil {
				d.logger.Error("tool handler panicked", zap.String("tool", spec.Name), zap.Any("recovered", r))
			}
			err = bridgeerr.Newf(bridgeerr.Internal, "tool %q panicked", spec.Name)
		}
	}()
	return spec.Handler(ctx, params)
}

// RecentCalls returns the last n call-log entries, newest first.
func (d *Dispatcher) RecentCalls(n int) []CallLogEntry { return d.log.recent(n) }

// ToolNames returns every registered tool name, sorted.
func (d *Dispatcher) ToolNames() []string { return d.registry.Names() }

// TopTools returns the n most-called tools.
func (d *Dispatcher) TopTools(n int) []ToolCount { return d.stats.top(n) }

// Capabilities reports the current readiness snapshot.
func (d *Dispatcher) Capabilities(ctx context.Context) Capabilities {
	return Capabilities{
		DAWConnected:     d.caps.DAWConnected(),
		BridgeConnected:  d.caps.BridgeConnected(ctx),
		CatalogPopulated: d.caps.CatalogPopulated(),
		CatalogItems:     d.caps.CatalogCount(),
		ToolCount:        d.registry.Count(),
		ServerVersion:    d.version,
	}
}
