// Package dispatcher exposes the tool registry to the agent protocol and
// routes calls: validate, check readiness, run on the worker pool, wrap
// the result in the uniform envelope, and record the call in the
// ring-buffer log and per-tool counters.
package dispatcher

import "context"

// Handler executes one tool call against already-validated parameters and
// returns either a structured result (marshaled into the envelope's data
// field) or a typed *bridgeerr.Error.
type Handler func(ctx context.Context, params map[string]any) (any, error)

// Validator checks raw parameters before the handler runs (size caps,
// required fields) and returns a *bridgeerr.Error with Kind InvalidInput
// on failure. A nil Validator accepts any input.
type Validator func(params map[string]any) error

// Needs declares which readiness preconditions a tool requires. The
// dispatcher checks these before invoking the handler.
type Needs struct {
	DAW     bool
	Bridge  bool
	Catalog bool
}

// ToolSpec is one registered tool: its handler, its validator, the
// readiness preconditions it declares, and the error-prefix label the
// dispatcher uses when wrapping an unhandled error.
type ToolSpec struct {
	Name        string
	Description string
	Needs       Needs
	Validator   Validator
	Handler     Handler
	ErrorPrefix string
}
