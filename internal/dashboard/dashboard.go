// Package dashboard serves the read-only, loopback-bound HTTP telemetry
// endpoints: current connection states, the last
// N tool calls, top-N tool counts, server version, and catalog size,
// plus a single HTML page and a Prometheus /metrics endpoint. Opt-in via
// configuration; off by default.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// CallSummary is one row of the recent-calls table, JSON-friendly.
type CallSummary struct {
	Timestamp       time.Time `json:"timestamp"`
	Name            string    `json:"name"`
	ArgumentSummary string    `json:"argument_summary"`
	DurationMS      int64     `json:"duration_ms"`
	Outcome         string    `json:"outcome"`
}

// ToolCount pairs a tool name with its observed call count.
type ToolCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Telemetry is the read model the dashboard reads from on every request;
// callers supply the live data via small accessor closures rather than
// handing the dashboard a concrete type, so it stays decoupled from the
// dispatcher/catalog/transport packages.
type Telemetry struct {
	DAWConnected     func() bool
	BridgeConnected  func(ctx context.Context) bool
	CatalogPopulated func() bool
	CatalogItems     func() int
	ToolCount        func() int
	ServerVersion    func() string
	RecentCalls      func(n int) []CallSummary
	TopTools         func(n int) []ToolCount
}

// Server is the dashboard's gin-backed HTTP server, bound to loopback
// only.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// New builds a dashboard Server. Routes are read-only: no handler
// mutates bridge state.
func New(telemetry Telemetry, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{engine: engine, logger: logger}
	s.registerRoutes(telemetry)
	return s
}

func (s *Server) registerRoutes(t Telemetry) {
	s.engine.GET("/", s.handleIndex())
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	api.GET("/status", s.handleStatus(t))
	api.GET("/calls", s.handleCalls(t))
	api.GET("/tools", s.handleTools(t))
}

// ListenAndServe binds to addr (expected to be a loopback host:port) and
// serves until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() { errCh <- s.http.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

type statusResponse struct {
	DAWConnected     bool    `json:"daw_connected"`
	BridgeConnected  bool    `json:"bridge_connected"`
	CatalogPopulated bool    `json:"catalog_populated"`
	CatalogItems     int     `json:"catalog_items"`
	ToolCount        int     `json:"tool_count"`
	ServerVersion    string  `json:"server_version"`
	ProcessRSSBytes  uint64  `json:"process_rss_bytes"`
	Goroutines       int     `json:"goroutines"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
}

func (s *Server) handleStatus(t Telemetry) gin.HandlerFunc {
	return func(c *gin.Context) {
		rss, goroutines, uptime := processStats()
		c.JSON(http.StatusOK, statusResponse{
			DAWConnected:     t.DAWConnected(),
			BridgeConnected:  t.BridgeConnected(c.Request.Context()),
			CatalogPopulated: t.CatalogPopulated(),
			CatalogItems:     t.CatalogItems(),
			ToolCount:        t.ToolCount(),
			ServerVersion:    t.ServerVersion(),
			ProcessRSSBytes:  rss,
			Goroutines:       goroutines,
			UptimeSeconds:    uptime.Seconds(),
		})
	}
}

func (s *Server) handleCalls(t Telemetry) gin.HandlerFunc {
	return func(c *gin.Context) {
		n := 50
		if q := c.Query("n"); q != "" {
			fmt.Sscanf(q, "%d", &n)
		}
		c.JSON(http.StatusOK, gin.H{"calls": t.RecentCalls(n)})
	}
}

func (s *Server) handleTools(t Telemetry) gin.HandlerFunc {
	return func(c *gin.Context) {
		n := 10
		if q := c.Query("n"); q != "" {
			fmt.Sscanf(q, "%d", &n)
		}
		c.JSON(http.StatusOK, gin.H{"tools": t.TopTools(n)})
	}
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>ableton-bridge dashboard</title></head>
<body>
<h1>ableton-bridge</h1>
<p>Read-only telemetry. See <a href="/api/status">/api/status</a>,
<a href="/api/calls">/api/calls</a>, <a href="/api/tools">/api/tools</a>,
and <a href="/metrics">/metrics</a>.</p>
</body>
</html>`

func (s *Server) handleIndex() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
	}
}
