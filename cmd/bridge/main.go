// Command bridge is the DAW bridge runtime's daemon entrypoint: it loads
// configuration, constructs the transports, pipeline, catalog cache,
// shared stores, and dispatcher, registers the concrete tools, and
// serves the agent-facing surface over stdio until signalled to stop.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hidingwill/ableton-bridge/internal/catalog"
	"github.com/hidingwill/ableton-bridge/internal/config"
	"github.com/hidingwill/ableton-bridge/internal/dashboard"
	"github.com/hidingwill/ableton-bridge/internal/dispatcher"
	"github.com/hidingwill/ableton-bridge/internal/logging"
	"github.com/hidingwill/ableton-bridge/internal/pipeline"
	"github.com/hidingwill/ableton-bridge/internal/prompts"
	"github.com/hidingwill/ableton-bridge/internal/readiness"
	"github.com/hidingwill/ableton-bridge/internal/resources"
	"github.com/hidingwill/ableton-bridge/internal/rpcstdio"
	"github.com/hidingwill/ableton-bridge/internal/singleton"
	"github.com/hidingwill/ableton-bridge/internal/store"
	"github.com/hidingwill/ableton-bridge/internal/tools"
	"github.com/hidingwill/ableton-bridge/internal/transport/osc"
	"github.com/hidingwill/ableton-bridge/internal/transport/tcp"
	"github.com/hidingwill/ableton-bridge/internal/transport/udp"
)

// version is the bridge's own reported version, bumped by hand at
// release time since this daemon has no CI-injected build stamping.
const version = "0.1.0"

// catalogFreshness is the on-disk cache's staleness window; a persisted
// file older than this is ignored and the cache starts cold.
const catalogFreshness = 7 * 24 * time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "bridge:", err)
		os.Exit(exitCodeFor(err))
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	guard, err := singleton.Acquire(cfg.Transport.SentinelPort)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	defer guard.Release()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	signals := readiness.NewSignals()

	tcpClient := tcp.NewClient(loopback(cfg.Transport.TCPPort), logger, signals.DawConnected)
	defer tcpClient.Close()

	oscClient, err := osc.NewClient(
		loopback(cfg.Transport.OSCSendPort),
		loopback(cfg.Transport.OSCRecvPort),
		logger,
	)
	if err != nil {
		return &exitError{code: 3, err: fmt.Errorf("binding OSC bridge sockets: %w", err)}
	}
	defer oscClient.Close()

	realtimeSender, err := udp.Dial(loopback(cfg.Transport.UDPRTPort))
	if err != nil {
		return &exitError{code: 3, err: fmt.Errorf("dialing real-time UDP sender: %w", err)}
	}
	defer realtimeSender.Close()

	pl := pipeline.New(tcpClient, oscClient, logger)
	pl.SetRealtimeSender(realtimeSender)

	catalogStore := catalog.NewStore(cfg.Catalog.Dir)
	cache := catalog.New(logger, signals.CatalogPopulated, catalogStore)
	if err := cache.LoadFromDisk(catalogFreshness); err != nil {
		logger.Warn("catalog disk load failed, continuing cold", zap.Error(err))
	}

	templatesDir := filepath.Join(filepath.Dir(cfg.Catalog.Dir), "templates")
	templateStore, err := store.NewTemplateStore(templatesDir)
	if err != nil {
		return fmt.Errorf("loading effect-chain templates: %w", err)
	}

	snapshotStore := store.NewSnapshotStore()
	macroStore := store.NewMacroStore()
	paramMapStore := store.NewParameterMapStore(store.DefaultParameterMaps())

	reg := dispatcher.NewRegistry()
	toolDeps := tools.Deps{
		Pipeline:  pl,
		Catalog:   cache,
		Snapshots: snapshotStore,
		Macros:    macroStore,
		ParamMaps: paramMapStore,
		Templates: templateStore,
		Logger:    logger,
	}
	tools.Register(reg, toolDeps)

	caps := &capabilityAdapter{signals: signals, bridge: oscClient, cache: cache}
	d := dispatcher.New(reg, caps, logger, prometheus.DefaultRegisterer, dispatcher.Options{Version: version})

	resourceReg := resources.NewRegistry()
	resources.Register(resourceReg, resources.Deps{Pipeline: pl, Catalog: cache})
	resourceReg.Register("capabilities", "DAW/bridge/catalog readiness, tool count, and versions.",
		func(ctx context.Context) (any, error) { return d.Capabilities(ctx), nil })

	promptReg := prompts.NewRegistry()
	prompts.RegisterDefaults(promptReg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		connectToDAW(gctx, tcpClient, logger)
		return nil
	})

	g.Go(func() error {
		populateCatalogOnce(gctx, cache, pl, signals, logger)
		return nil
	})

	if cfg.Dashboard.Enabled {
		dash := dashboard.New(telemetryFor(d, caps), logger)
		addr := loopback(cfg.Dashboard.Port)
		g.Go(func() error {
			logger.Info("dashboard listening", zap.String("addr", addr))
			return dash.ListenAndServe(gctx, addr)
		})
	}

	g.Go(func() error {
		srv := &rpcstdio.Server{Dispatcher: d, Resources: resourceReg, Prompts: promptReg, Logger: logger}
		err := srv.Serve(gctx, os.Stdin, os.Stdout)
		stop() // stdin closed (agent disconnected): shut the whole daemon down
		return err
	})

	logger.Info("bridge started",
		zap.Int("tcp_port", cfg.Transport.TCPPort),
		zap.Int("udp_rt_port", cfg.Transport.UDPRTPort),
		zap.Int("osc_send_port", cfg.Transport.OSCSendPort),
		zap.Int("osc_recv_port", cfg.Transport.OSCRecvPort),
		zap.Bool("dashboard_enabled", cfg.Dashboard.Enabled),
		zap.String("version", version))

	return g.Wait()
}

// connectToDAW attempts the initial TCP handshake in the background with
// capped exponential backoff, so the DAW-connected readiness
// event is set as soon as the DAW becomes reachable even if no tool call
// has been issued yet. Subsequent reconnects are handled by the client
// itself inside Send/Reconnect; this loop only covers the very first
// connection.
func connectToDAW(ctx context.Context, client *tcp.Client, logger *zap.Logger) {
	backoff := 250 * time.Millisecond
	const maxBackoff = 5 * time.Second
	for {
		if err := client.Connect(ctx); err == nil {
			return
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		if backoff < maxBackoff {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

// populateCatalogOnce waits for the DAW to connect, then runs a single
// catalog populate pass. The cache never auto-rescans after this;
// further refreshes only happen through the explicitly-invoked
// refresh_catalog tool.
func populateCatalogOnce(ctx context.Context, cache *catalog.Cache, pl *pipeline.Pipeline, signals *readiness.Signals, logger *zap.Logger) {
	if !signals.DawConnected.Wait(ctx) {
		return
	}
	if err := cache.Populate(ctx, catalog.NewDAWPopulator(pl)); err != nil {
		logger.Warn("initial catalog populate failed", zap.Error(err))
	}
}

func telemetryFor(d *dispatcher.Dispatcher, caps *capabilityAdapter) dashboard.Telemetry {
	return dashboard.Telemetry{
		DAWConnected:     caps.DAWConnected,
		BridgeConnected:  caps.BridgeConnected,
		CatalogPopulated: caps.CatalogPopulated,
		CatalogItems:     caps.CatalogCount,
		ToolCount:        func() int { return d.Capabilities(context.Background()).ToolCount },
		ServerVersion:    func() string { return version },
		RecentCalls: func(n int) []dashboard.CallSummary {
			entries := d.RecentCalls(n)
			out := make([]dashboard.CallSummary, len(entries))
			for i, e := range entries {
				out[i] = dashboard.CallSummary{
					Timestamp:       e.Timestamp,
					Name:            e.Name,
					ArgumentSummary: e.ArgumentSummary,
					DurationMS:      e.DurationMS,
					Outcome:         e.Outcome,
				}
			}
			return out
		},
		TopTools: func(n int) []dashboard.ToolCount {
			counts := d.TopTools(n)
			out := make([]dashboard.ToolCount, len(counts))
			for i, c := range counts {
				out[i] = dashboard.ToolCount{Name: c.Name, Count: c.Count}
			}
			return out
		},
	}
}

func loopback(port int) string {
	return net.JoinHostPort("127.0.0.1", fmt.Sprintf("%d", port))
}

// exitError carries a non-zero exit code alongside its message:
// singleton conflict, required-port bind failure, or an unrecoverable
// configuration error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}
