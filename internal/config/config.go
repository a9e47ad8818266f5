// Package config loads the bridge runtime's environment-variable
// configuration through a single Load entry point.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Transport holds the DAW-facing port configuration: TCP_PORT,
// UDP_RT_PORT, OSC_SEND_PORT, OSC_RECV_PORT, SENTINEL_PORT.
type Transport struct {
	TCPPort      int
	UDPRTPort    int
	OSCSendPort  int
	OSCRecvPort  int
	SentinelPort int
}

// Dashboard holds the opt-in read-only HTTP dashboard configuration.
type Dashboard struct {
	Enabled bool
	Port    int
}

// Catalog holds the browser catalog cache's on-disk persistence location.
type Catalog struct {
	Dir string
}

// Log holds logging configuration.
type Log struct {
	Level string
}

// Config aggregates every configuration concern.
type Config struct {
	Transport Transport
	Dashboard Dashboard
	Catalog   Catalog
	Log       Log
}

const (
	defaultTCPPort       = 9001
	defaultUDPRTPort     = 9002
	defaultOSCSendPort   = 9003
	defaultOSCRecvPort   = 9004
	defaultSentinelPort  = 9000
	defaultDashboardPort = 9090
)

// Load reads an optional .env file (silently ignored if absent; this
// daemon is typically launched without one) then resolves every option
// from the environment with the defaults above.
func Load() (*Config, error) {
	_ = godotenv.Load()

	catalogDir, err := defaultCatalogDir()
	if err != nil {
		return nil, fmt.Errorf("config: resolving default catalog dir: %w", err)
	}

	cfg := &Config{
		Transport: Transport{
			TCPPort:      envInt("TCP_PORT", defaultTCPPort),
			UDPRTPort:    envInt("UDP_RT_PORT", defaultUDPRTPort),
			OSCSendPort:  envInt("OSC_SEND_PORT", defaultOSCSendPort),
			OSCRecvPort:  envInt("OSC_RECV_PORT", defaultOSCRecvPort),
			SentinelPort: envInt("SENTINEL_PORT", defaultSentinelPort),
		},
		Dashboard: Dashboard{
			Enabled: envBool("DASHBOARD_ENABLED", false),
			Port:    envInt("DASHBOARD_PORT", defaultDashboardPort),
		},
		Catalog: Catalog{
			Dir: envString("CATALOG_DIR", catalogDir),
		},
		Log: Log{
			Level: envString("LOG_LEVEL", "info"),
		},
	}
	return cfg, nil
}

func defaultCatalogDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ableton-bridge", "catalog"), nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
