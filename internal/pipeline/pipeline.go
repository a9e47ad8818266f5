package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
	"github.com/hidingwill/ableton-bridge/internal/transport/osc"
	"github.com/hidingwill/ableton-bridge/internal/transport/tcp"
	"github.com/hidingwill/ableton-bridge/internal/transport/udp"
)

// Pipeline is the single waypoint between tool handlers and the DAW
// transports. It owns one writer mutex per transport so that a tier's
// post-delay genuinely blocks the next command's acquisition: no other
// transport command begins for at least the post-delay.
type Pipeline struct {
	tcpClient    *tcp.Client
	oscClient    *osc.Client
	realtimeSend *udp.Sender
	logger       *zap.Logger

	tcpMu sync.Mutex
	oscMu sync.Mutex
}

// New constructs a Pipeline over an already-connected TCP client and OSC
// bridge client.
func New(tcpClient *tcp.Client, oscClient *osc.Client, logger *zap.Logger) *Pipeline {
	return &Pipeline{tcpClient: tcpClient, oscClient: oscClient, logger: logger}
}

// SetRealtimeSender attaches the fire-and-forget UDP real-time channel.
// Separate from New because the channel is optional: the daemon dials the
// real-time port at startup and attaches the sender here, and tests that
// never touch the real-time channel can leave it unset.
func (p *Pipeline) SetRealtimeSender(s *udp.Sender) {
	p.realtimeSend = s
}

// SendRealtime writes a single fire-and-forget datagram on the real-time
// channel. There is no tier post-delay and no serializing
// mutex: the UDP socket itself is safe for concurrent writes, and the
// whole point of this channel is that callers never wait on it.
func (p *Pipeline) SendRealtime(msgType string, params map[string]any) error {
	if p.realtimeSend == nil {
		return bridgeerr.New(bridgeerr.NotReady, "real-time UDP channel is not attached")
	}
	return p.realtimeSend.Send(udp.Message{Type: msgType, Params: params})
}

// SendTCP is the TCP entry point: classify, serialize, send, retry once
// if idempotent, pace. isModifying feeds the default-timeout policy when
// explicitTimeout is zero; a nonzero explicitTimeout always takes
// precedence.
func (p *Pipeline) SendTCP(ctx context.Context, commandType string, params map[string]any, isModifying bool, explicitTimeout time.Duration) (tcp.Response, error) {
	timeout := explicitTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout(commandType, isModifying)
	}
	tier := ClassifyTier(commandType)
	idempotent := IsIdempotent(commandType)
	cmd := tcp.Command{Type: commandType, Params: params}

	p.tcpMu.Lock()
	defer p.tcpMu.Unlock()

	resp, err := p.tcpClient.Send(ctx, cmd, timeout)
	if err != nil && idempotent && retryable(err) {
		p.logger.Warn("retrying idempotent command after connection failure",
			zap.String("command", commandType), zap.Error(err))
		if reErr := p.tcpClient.Reconnect(ctx); reErr == nil {
			resp, err = p.tcpClient.Send(ctx, cmd, timeout)
		}
	}
	if err == nil {
		sleepContext(ctx, tier.postDelay())
	}
	return resp, err
}

// defaultOSCTimeout bounds OSC calls whose caller supplies no explicit
// timeout, matching DynamicTimeout's floor.
const defaultOSCTimeout = 10 * time.Second

// SendOSC is the OSC bridge entry point. It does not retry on
// BridgeBusy; that is the caller's decision via osc.RetryBusy.
func (p *Pipeline) SendOSC(ctx context.Context, address string, args []any, timeout time.Duration) (json.RawMessage, error) {
	if timeout <= 0 {
		timeout = defaultOSCTimeout
	}

	p.oscMu.Lock()
	defer p.oscMu.Unlock()

	return p.oscClient.Call(ctx, address, args, timeout)
}

func retryable(err error) bool {
	kind := bridgeerr.KindOf(err)
	return kind == bridgeerr.Disconnected || kind == bridgeerr.Timeout
}

// sleepContext sleeps for d or returns early if ctx is done first. The
// pipeline still applies the full requested post-delay unless the caller
// is actively shutting down.
func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
