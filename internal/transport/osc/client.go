package osc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// Client owns the two UDP sockets of the OSC bridge channel and correlates
// requests to responses by request id. The bridge device itself
// serializes discovery/batch operations; this client does not enforce
// that in general. It forwards every call and surfaces the bridge's own
// "busy" responses.
type Client struct {
	sendAddr *net.UDPAddr
	sendConn *net.UDPConn
	recvConn *net.UDPConn
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[string]*pendingCall

	pingMu      sync.Mutex
	pingVersion string
	pingAt      time.Time

	closeOnce sync.Once
	done      chan struct{}
}

type pendingCall struct {
	mu       sync.Mutex // guards mode and reasm between the read loop and the caller's timeout path
	mode     string     // "" until first message observed, then "single" or "chunked"
	reasm    *reassembly
	resultCh chan callOutcome
	notified sync.Once
}

type callOutcome struct {
	resp finalResponse
	err  error
}

type finalResponse struct {
	Status  string          `json:"status"`
	Result  json.RawMessage `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
}

const pingTTL = 5 * time.Second

// NewClient binds the receive socket on recvAddr and resolves the
// destination send address. Call Close to release both sockets and stop
// the background read loop.
func NewClient(sendAddr, recvAddr string, logger *zap.Logger) (*Client, error) {
	udpSendAddr, err := net.ResolveUDPAddr("udp", sendAddr)
	if err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.Internal, "resolving OSC send address", err)
	}
	sendConn, err := net.DialUDP("udp", nil, udpSendAddr)
	if err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.BridgeReported, "dialing OSC send socket", err)
	}
	udpRecvAddr, err := net.ResolveUDPAddr("udp", recvAddr)
	if err != nil {
		sendConn.Close()
		return nil, bridgeerr.Wrap(bridgeerr.Internal, "resolving OSC receive address", err)
	}
	recvConn, err := net.ListenUDP("udp", udpRecvAddr)
	if err != nil {
		sendConn.Close()
		return nil, bridgeerr.Wrap(bridgeerr.BridgeReported, "binding OSC receive socket", err)
	}

	c := &Client{
		sendAddr: udpSendAddr,
		sendConn: sendConn,
		recvConn: recvConn,
		logger:   logger,
		pending:  make(map[string]*pendingCall),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Close stops the read loop and releases both sockets.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	c.sendConn.Close()
	return c.recvConn.Close()
}

// Call issues address/args as one OSC request (appending a generated
// request_id as the final argument) and waits up to timeout for the
// correlated, possibly-chunked response.
func (c *Client) Call(ctx context.Context, address string, args []any, timeout time.Duration) (json.RawMessage, error) {
	id := uuid.NewString()

	call := &pendingCall{resultCh: make(chan callOutcome, 1)}
	c.mu.Lock()
	c.pending[id] = call
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	encoded, err := encodeMessage(address, append(append([]any{}, args...), id)...)
	if err != nil {
		return nil, err
	}
	if _, err := c.sendConn.Write(encoded); err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.BridgeReported, "writing OSC request", err)
	}

	select {
	case outcome := <-call.resultCh:
		if outcome.err != nil {
			return nil, outcome.err
		}
		return responseToResult(outcome.resp)
	case <-time.After(timeout):
		return nil, c.timeoutError(call, id)
	case <-ctx.Done():
		return nil, bridgeerr.Wrap(bridgeerr.Timeout, "OSC call canceled", ctx.Err())
	}
}

func (c *Client) timeoutError(call *pendingCall, id string) error {
	call.mu.Lock()
	reasm := call.reasm
	call.mu.Unlock()
	if reasm != nil {
		return bridgeerr.Newf(bridgeerr.ProtocolError,
			"chunk reassembly timed out for request %s: missing %v", id, reasm.missing()).
			WithDetails(map[string]any{
				"missing":  reasm.missing(),
				"received": reasm.received(),
				"expected": reasm.expected(),
			})
	}
	return bridgeerr.Newf(bridgeerr.Timeout, "no response for OSC request %s", id)
}

func responseToResult(resp finalResponse) (json.RawMessage, error) {
	if resp.Status == "error" {
		if resp.Message == "busy" {
			return nil, bridgeerr.New(bridgeerr.BridgeBusy, "OSC bridge reported busy")
		}
		return nil, bridgeerr.New(bridgeerr.BridgeReported, resp.Message)
	}
	return resp.Result, nil
}

// readLoop continuously decodes incoming OSC datagrams and routes them to
// the pending call they correlate with, discarding unmatched late arrivals
// from earlier timed-out calls.
func (c *Client) readLoop() {
	buf := make([]byte, 65536)
	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.recvConn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, _, err := c.recvConn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-c.done:
				return
			default:
				c.logger.Warn("osc read loop error", zap.Error(err))
				continue
			}
		}

		_, args, err := decodeMessage(buf[:n])
		if err != nil {
			c.logger.Warn("discarding malformed OSC datagram", zap.Error(err))
			continue
		}
		if len(args) == 0 {
			continue
		}
		payload, ok := args[len(args)-1].(string)
		if !ok {
			continue
		}
		decoded, err := base64.URLEncoding.DecodeString(payload)
		if err != nil {
			c.logger.Warn("discarding OSC datagram with invalid base64 payload", zap.Error(err))
			continue
		}

		c.route(decoded)
	}
}

func (c *Client) route(decoded []byte) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(decoded, &probe); err != nil {
		c.logger.Warn("discarding non-JSON OSC payload", zap.Error(err))
		return
	}

	var id string
	if raw, ok := probe["id"]; ok {
		_ = json.Unmarshal(raw, &id)
	}

	c.mu.Lock()
	call, ok := c.pending[id]
	c.mu.Unlock()
	if !ok {
		c.logger.Warn("discarding unmatched OSC response", zap.String("requestId", id))
		return
	}

	if isChunkEnvelope(probe) {
		c.routeChunk(call, decoded)
		return
	}
	c.routeSingle(call, decoded)
}

func (c *Client) routeSingle(call *pendingCall, decoded []byte) {
	call.mu.Lock()
	if call.mode == "chunked" {
		call.mu.Unlock()
		c.logger.Warn("ignoring non-chunk packet received during reassembly")
		return
	}
	call.mode = "single"
	call.mu.Unlock()

	var resp finalResponse
	if err := json.Unmarshal(decoded, &resp); err != nil {
		call.notified.Do(func() {
			call.resultCh <- callOutcome{err: bridgeerr.Wrap(bridgeerr.ProtocolError, "decoding OSC response", err)}
		})
		return
	}
	call.notified.Do(func() { call.resultCh <- callOutcome{resp: resp} })
}

func (c *Client) routeChunk(call *pendingCall, decoded []byte) {
	call.mu.Lock()
	if call.mode == "single" {
		call.mu.Unlock()
		c.logger.Warn("ignoring chunk packet after single response already delivered")
		return
	}
	call.mode = "chunked"
	if call.reasm == nil {
		call.reasm = newReassembly()
	}
	reasm := call.reasm
	call.mu.Unlock()

	var env chunkEnvelope
	if err := json.Unmarshal(decoded, &env); err != nil {
		c.logger.Warn("discarding malformed chunk envelope", zap.Error(err))
		return
	}

	before := reasm.received()
	done, err := reasm.add(env.Chunk, env.Total, env.Data)
	if err != nil {
		call.notified.Do(func() { call.resultCh <- callOutcome{err: err} })
		return
	}
	if !done {
		if reasm.received() == before {
			c.logger.Warn("ignoring duplicate OSC chunk", zap.Int("index", env.Chunk))
		}
		return
	}

	assembled, err := reasm.assemble()
	if err != nil {
		call.notified.Do(func() {
			call.resultCh <- callOutcome{err: bridgeerr.Wrap(bridgeerr.ProtocolError, "assembling chunked response", err)}
		})
		return
	}
	var resp finalResponse
	if err := json.Unmarshal(assembled, &resp); err != nil {
		call.notified.Do(func() {
			call.resultCh <- callOutcome{err: bridgeerr.Wrap(bridgeerr.ProtocolError, "decoding reassembled response", err)}
		})
		return
	}
	call.notified.Do(func() { call.resultCh <- callOutcome{resp: resp} })
}

// DynamicTimeout scales a batch/discovery timeout with the declared input
// size: 150ms per parameter, floor 10s.
func DynamicTimeout(paramCount int) time.Duration {
	scaled := time.Duration(paramCount) * 150 * time.Millisecond
	if scaled < 10*time.Second {
		return 10 * time.Second
	}
	return scaled
}

// Ping returns the bridge's declared version, caching the most recent
// successful result for pingTTL so repeated health checks within the
// window skip the round trip.
func (c *Client) Ping(ctx context.Context) (string, error) {
	c.pingMu.Lock()
	if time.Since(c.pingAt) < pingTTL && c.pingVersion != "" {
		version := c.pingVersion
		c.pingMu.Unlock()
		return version, nil
	}
	c.pingMu.Unlock()

	raw, err := c.Call(ctx, "/ping", nil, 2*time.Second)
	if err != nil {
		return "", err
	}
	var payload struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", bridgeerr.Wrap(bridgeerr.ProtocolError, "decoding ping response", err)
	}

	c.pingMu.Lock()
	c.pingVersion = payload.Version
	c.pingAt = time.Now()
	c.pingMu.Unlock()
	return payload.Version, nil
}

// String implements fmt.Stringer for diagnostic logging of the resolved
// send address.
func (c *Client) String() string {
	return fmt.Sprintf("osc.Client{send=%s}", c.sendAddr)
}
