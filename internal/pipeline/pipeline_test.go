package pipeline

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
	"github.com/hidingwill/ableton-bridge/internal/logging"
	"github.com/hidingwill/ableton-bridge/internal/readiness"
	"github.com/hidingwill/ableton-bridge/internal/transport/tcp"
)

func TestClassifyTierDefaultsToInstant(t *testing.T) {
	assert.Equal(t, TierInstant, ClassifyTier("some_unlisted_command"))
	assert.Equal(t, TierStructural, ClassifyTier("create_midi_track"))
	assert.Equal(t, TierLight, ClassifyTier("add_automation_point"))
}

func TestIsIdempotent(t *testing.T) {
	assert.False(t, IsIdempotent("create_midi_track"))
	assert.True(t, IsIdempotent("get_session_info"))
	assert.True(t, IsIdempotent("set_tempo"))
}

func TestDefaultTimeoutHonorsSlowOverrides(t *testing.T) {
	assert.Equal(t, 60*time.Second, DefaultTimeout("populate_catalog", false))
	assert.Equal(t, 15*time.Second, DefaultTimeout("create_midi_track", true))
	assert.Equal(t, 10*time.Second, DefaultTimeout("get_session_info", false))
}

// loopbackDAW is a minimal newline-JSON fake reused across pipeline tests.
func loopbackDAW(t *testing.T, handle func(line string) string) (addr string, closeFn func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			resp := handle(line)
			if resp == "" {
				return
			}
			conn.Write([]byte(resp))
		}
	}()
	return ln.Addr().String(), func() { ln.Close() }
}

func TestSendTCPEnforcesPostDelayBeforeNextAcquisition(t *testing.T) {
	addr, closeFn := loopbackDAW(t, func(string) string {
		return `{"status":"success"}` + "\n"
	})
	defer closeFn()

	client := tcp.NewClient(addr, logging.NewNop(), readiness.NewEvent())
	defer client.Close()
	p := New(client, nil, logging.NewNop())

	start := time.Now()
	_, err := p.SendTCP(context.Background(), "create_midi_track", nil, true, 0)
	require.NoError(t, err)
	firstDone := time.Since(start)

	assert.GreaterOrEqual(t, firstDone, 100*time.Millisecond, "structural command must apply its 100ms post-delay before returning")
}

func TestSendTCPRetriesIdempotentOnDisconnect(t *testing.T) {
	attempts := 0
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			attempts++
			if attempts == 1 {
				conn.Close() // simulate a reset on the first attempt
				continue
			}
			r := bufio.NewReader(conn)
			line, err := r.ReadString('\n')
			if err == nil && line != "" {
				conn.Write([]byte(`{"status":"success"}` + "\n"))
			}
			conn.Close()
			return
		}
	}()

	client := tcp.NewClient(ln.Addr().String(), logging.NewNop(), readiness.NewEvent())
	defer client.Close()
	p := New(client, nil, logging.NewNop())

	_, err = p.SendTCP(context.Background(), "get_session_info", nil, false, time.Second)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, attempts, 2)
}

func TestSendTCPDoesNotRetryNonIdempotent(t *testing.T) {
	attempts := 0
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		attempts++
		conn.Close()
	}()

	client := tcp.NewClient(ln.Addr().String(), logging.NewNop(), readiness.NewEvent())
	defer client.Close()
	p := New(client, nil, logging.NewNop())

	_, err = p.SendTCP(context.Background(), "create_midi_track", nil, true, 300*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, bridgeerr.Disconnected, bridgeerr.KindOf(err))
	assert.Equal(t, 1, attempts, "non-idempotent command must never be retried")
}
