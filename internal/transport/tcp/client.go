// Package tcp implements the bridge's long-lived TCP command client to the
// DAW scripting endpoint: line-delimited JSON framing, a single
// writer mutex serializing every command on the wire, and reconnection with
// capped exponential backoff guarded by a circuit breaker so a dead DAW
// doesn't get hammered with reopen attempts.
package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bassosimone/errclass"
	"github.com/bassosimone/safeconn"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
	"github.com/hidingwill/ableton-bridge/internal/readiness"
)

const (
	initialBackoff = 250 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Client owns one TCP connection to the DAW scripting endpoint. Exactly one
// command may be on the wire at a time; Send acquires the writer mutex for
// its full request/response round trip, so responses are read strictly in
// writer-mutex acquisition order.
type Client struct {
	addr    string
	logger  *zap.Logger
	onReady *readiness.Event
	dialer  net.Dialer
	breaker *gobreaker.CircuitBreaker

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	backoff time.Duration
}

// NewClient constructs a Client for the given loopback "host:port" address.
// onReady is set the first time a connection succeeds and is never
// cleared.
func NewClient(addr string, logger *zap.Logger, onReady *readiness.Event) *Client {
	c := &Client{
		addr:    addr,
		logger:  logger,
		onReady: onReady,
		backoff: initialBackoff,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "tcp-reconnect",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     maxBackoff,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("tcp circuit breaker state change",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return c
}

// Connect dials the DAW endpoint once. Callers normally don't need to call
// this directly; Send dials lazily on first use and reconnects on failure.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	t0 := time.Now()
	deadline, _ := ctx.Deadline()
	c.logger.Info("tcp connectStart",
		zap.String("remoteAddr", c.addr), zap.Time("deadline", deadline))

	_, err := c.breaker.Execute(func() (any, error) {
		conn, dialErr := c.dialer.DialContext(ctx, "tcp", c.addr)
		if dialErr != nil {
			return nil, dialErr
		}
		c.conn = conn
		c.reader = bufio.NewReader(conn)
		c.writer = bufio.NewWriter(conn)
		return nil, nil
	})

	c.logger.Info("tcp connectDone",
		zap.String("remoteAddr", c.addr),
		zap.String("localAddr", safeconn.LocalAddr(c.conn)),
		zap.String("errClass", classify(err)),
		zap.Duration("elapsed", time.Since(t0)),
		zap.Error(err))

	if err != nil {
		return bridgeerr.Wrap(bridgeerr.Disconnected, "dial DAW scripting endpoint", err)
	}
	c.backoff = initialBackoff
	c.onReady.Set()
	return nil
}

// Send writes cmd as a single JSON line and waits up to timeout for the
// matching response line. It does not retry; retry-once-if-idempotent
// policy lives in the command pipeline, which calls Send again after a
// Disconnected error once it has decided a retry is warranted.
func (c *Client) Send(ctx context.Context, cmd Command, timeout time.Duration) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.connectLocked(ctx); err != nil {
			return Response{}, err
		}
	}

	deadline := time.Now().Add(timeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		return Response{}, bridgeerr.Wrap(bridgeerr.Internal, "setting socket deadline", err)
	}

	if err := writeCommand(c.writer, cmd); err != nil {
		c.closeLocked()
		return Response{}, c.classifyTransportError("writing command", err)
	}

	resp, err := readResponse(c.reader)
	if err != nil {
		var be *bridgeerr.Error
		if errors.As(err, &be) && be.Kind == bridgeerr.ProtocolError {
			return Response{}, err
		}
		c.closeLocked()
		return Response{}, c.classifyTransportError("reading response", err)
	}

	if !resp.Succeeded() {
		return Response{}, bridgeerr.New(bridgeerr.DawReported, resp.Message)
	}
	return resp, nil
}

// Reconnect closes the current connection (if any) and dials again,
// honoring the circuit breaker and capped exponential backoff. Called by
// the pipeline before a retry attempt.
func (c *Client) Reconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()

	wait := c.backoff
	c.backoff = min(c.backoff*2, maxBackoff)

	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return bridgeerr.Wrap(bridgeerr.Timeout, "reconnect backoff interrupted", ctx.Err())
	}
	return c.connectLocked(ctx)
}

// Close releases the underlying socket. Safe to call multiple times.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}

func (c *Client) closeLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
		c.reader = nil
		c.writer = nil
	}
}

func (c *Client) classifyTransportError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return bridgeerr.Wrap(bridgeerr.Timeout, op, err)
	}
	if errors.Is(err, io.EOF) {
		return bridgeerr.Wrap(bridgeerr.Disconnected, op, err)
	}
	return bridgeerr.Wrap(bridgeerr.Disconnected, fmt.Sprintf("%s: %s", op, classify(err)), err)
}

func classify(err error) string {
	if err == nil {
		return ""
	}
	return errclass.New(err)
}
