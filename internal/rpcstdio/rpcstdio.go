// Package rpcstdio is a minimal line-delimited JSON stand-in for the
// agent-facing tool/resource/prompt RPC framework, an external
// collaborator this daemon talks to but does not implement. This package
// exists only so cmd/bridge is a runnable daemon: it reads one JSON
// request per line from stdin and writes one JSON response per line to
// stdout, framed exactly like internal/transport/tcp's DAW command
// channel (newline-terminated JSON, size-capped). A real deployment
// swaps this package for the actual agent protocol's stdio binding;
// nothing else in this repository depends on its wire shape.
package rpcstdio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
	"github.com/hidingwill/ableton-bridge/internal/dispatcher"
	"github.com/hidingwill/ableton-bridge/internal/prompts"
	"github.com/hidingwill/ableton-bridge/internal/resources"
)

// maxLineBytes matches the DAW TCP channel's protocol-error threshold
// so an oversized request is rejected the same way.
const maxLineBytes = 16 * 1024 * 1024

// Request is one line of agent input. Method selects the surface:
// "call_tool", "read_resource", "render_prompt", "list_tools",
// "list_resources", "list_prompts", "capabilities".
type Request struct {
	ID     any            `json:"id,omitempty"`
	Method string         `json:"method"`
	Name   string         `json:"name,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// Response is one line of agent output, echoing the request ID.
type Response struct {
	ID     any    `json:"id,omitempty"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Server drives the stdio loop against the already-wired dispatcher,
// resource registry, and prompt registry.
type Server struct {
	Dispatcher *dispatcher.Dispatcher
	Resources  *resources.Registry
	Prompts    *prompts.Registry
	Logger     *zap.Logger
}

// Serve reads requests from in and writes responses to out until in is
// exhausted or ctx is cancelled. One request is handled at a time, in
// arrival order: each tool call is dispatched synchronously, so a slow
// tool call holds this loop, and the next line of stdin is not read until
// that call's response has been written.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReaderSize(in, 64*1024)
	writer := bufio.NewWriter(out)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line, err := readLineCapped(reader, maxLineBytes)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(writer, Response{Error: "malformed request: " + err.Error()})
			continue
		}
		resp := s.handle(ctx, req)
		s.writeResponse(writer, resp)
	}
}

func (s *Server) handle(ctx context.Context, req Request) Response {
	switch req.Method {
	case "call_tool":
		out := s.Dispatcher.Dispatch(ctx, req.Name, req.Params)
		var raw json.RawMessage = []byte(out)
		return Response{ID: req.ID, Result: raw}
	case "read_resource":
		data, err := s.Resources.Read(ctx, req.Name)
		if err != nil {
			return Response{ID: req.ID, Error: err.Error()}
		}
		return Response{ID: req.ID, Result: data}
	case "render_prompt":
		text, err := s.Prompts.Render(req.Name, req.Params)
		if err != nil {
			return Response{ID: req.ID, Error: err.Error()}
		}
		return Response{ID: req.ID, Result: text}
	case "list_resources":
		return Response{ID: req.ID, Result: s.Resources.List()}
	case "list_prompts":
		return Response{ID: req.ID, Result: s.Prompts.List()}
	case "list_tools":
		return Response{ID: req.ID, Result: s.Dispatcher.ToolNames()}
	case "capabilities":
		return Response{ID: req.ID, Result: s.Dispatcher.Capabilities(ctx)}
	default:
		return Response{ID: req.ID, Error: bridgeerr.Newf(bridgeerr.InvalidInput, "unknown method %q", req.Method).Error()}
	}
}

func (s *Server) writeResponse(w *bufio.Writer, resp Response) {
	encoded, err := json.Marshal(resp)
	if err != nil {
		s.Logger.Error("rpcstdio: encoding response failed", zap.Error(err))
		return
	}
	if _, err := w.Write(encoded); err != nil {
		s.Logger.Error("rpcstdio: writing response failed", zap.Error(err))
		return
	}
	if err := w.WriteByte('\n'); err != nil {
		s.Logger.Error("rpcstdio: writing newline failed", zap.Error(err))
		return
	}
	if err := w.Flush(); err != nil {
		s.Logger.Error("rpcstdio: flushing response failed", zap.Error(err))
	}
}

func readLineCapped(r *bufio.Reader, limit int) ([]byte, error) {
	var line []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return nil, err
		}
		line = append(line, chunk...)
		if len(line) > limit {
			for isPrefix {
				_, isPrefix, err = r.ReadLine()
				if err != nil {
					break
				}
			}
			return nil, bridgeerr.Newf(bridgeerr.ProtocolError, "request line exceeds %d bytes", limit)
		}
		if !isPrefix {
			return line, nil
		}
	}
}
