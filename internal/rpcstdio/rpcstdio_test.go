package rpcstdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidingwill/ableton-bridge/internal/dispatcher"
	"github.com/hidingwill/ableton-bridge/internal/logging"
	"github.com/hidingwill/ableton-bridge/internal/prompts"
	"github.com/hidingwill/ableton-bridge/internal/resources"
)

type fakeCaps struct{}

func (fakeCaps) DAWConnected() bool                       { return true }
func (fakeCaps) BridgeConnected(ctx context.Context) bool { return true }
func (fakeCaps) CatalogPopulated() bool                   { return true }
func (fakeCaps) CatalogCount() int                        { return 3 }

func newTestServer() (*Server, *dispatcher.Registry) {
	reg := dispatcher.NewRegistry()
	reg.Register(dispatcher.ToolSpec{
		Name: "echo",
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			return params["value"], nil
		},
	})
	d := dispatcher.New(reg, fakeCaps{}, logging.NewNop(), nil, dispatcher.Options{Version: "test"})

	resReg := resources.NewRegistry()
	resReg.Register("ping", "always pong", func(ctx context.Context) (any, error) { return "pong", nil })

	promptReg := prompts.NewRegistry()
	promptReg.Register("hi", "says hi", "hi {{.name}}")

	return &Server{Dispatcher: d, Resources: resReg, Prompts: promptReg, Logger: logging.NewNop()}, reg
}

func readLines(t *testing.T, out *bytes.Buffer) []Response {
	t.Helper()
	var responses []Response
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var resp Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestServeCallToolRoundTrips(t *testing.T) {
	srv, _ := newTestServer()

	req := Request{ID: "1", Method: "call_tool", Name: "echo", Params: map[string]any{"value": "hello"}}
	encoded, err := json.Marshal(req)
	require.NoError(t, err)

	in := bytes.NewBuffer(append(encoded, '\n'))
	out := &bytes.Buffer{}

	require.NoError(t, srv.Serve(context.Background(), in, out))

	responses := readLines(t, out)
	require.Len(t, responses, 1)
	assert.Equal(t, "1", responses[0].ID)
	result, ok := responses[0].Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, "hello", result["data"])
}

func TestServeReadResource(t *testing.T) {
	srv, _ := newTestServer()

	req := Request{ID: "2", Method: "read_resource", Name: "ping"}
	encoded, _ := json.Marshal(req)
	in := bytes.NewBuffer(append(encoded, '\n'))
	out := &bytes.Buffer{}

	require.NoError(t, srv.Serve(context.Background(), in, out))

	responses := readLines(t, out)
	require.Len(t, responses, 1)
	assert.Equal(t, "pong", responses[0].Result)
}

func TestServeRenderPrompt(t *testing.T) {
	srv, _ := newTestServer()

	req := Request{ID: "3", Method: "render_prompt", Name: "hi", Params: map[string]any{"name": "Lead"}}
	encoded, _ := json.Marshal(req)
	in := bytes.NewBuffer(append(encoded, '\n'))
	out := &bytes.Buffer{}

	require.NoError(t, srv.Serve(context.Background(), in, out))

	responses := readLines(t, out)
	require.Len(t, responses, 1)
	assert.Equal(t, "hi Lead", responses[0].Result)
}

func TestServeUnknownMethodReturnsError(t *testing.T) {
	srv, _ := newTestServer()

	req := Request{ID: "4", Method: "nonsense"}
	encoded, _ := json.Marshal(req)
	in := bytes.NewBuffer(append(encoded, '\n'))
	out := &bytes.Buffer{}

	require.NoError(t, srv.Serve(context.Background(), in, out))

	responses := readLines(t, out)
	require.Len(t, responses, 1)
	assert.NotEmpty(t, responses[0].Error)
}

func TestServeMalformedLineDoesNotStopTheLoop(t *testing.T) {
	srv, _ := newTestServer()

	in := bytes.NewBufferString("not json\n" + `{"id":"5","method":"read_resource","name":"ping"}` + "\n")
	out := &bytes.Buffer{}

	require.NoError(t, srv.Serve(context.Background(), in, out))

	responses := readLines(t, out)
	require.Len(t, responses, 2)
	assert.NotEmpty(t, responses[0].Error)
	assert.Equal(t, "pong", responses[1].Result)
}
