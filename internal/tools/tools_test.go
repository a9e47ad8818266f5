package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidingwill/ableton-bridge/internal/catalog"
	"github.com/hidingwill/ableton-bridge/internal/dispatcher"
	"github.com/hidingwill/ableton-bridge/internal/logging"
	"github.com/hidingwill/ableton-bridge/internal/pipeline"
	"github.com/hidingwill/ableton-bridge/internal/readiness"
	"github.com/hidingwill/ableton-bridge/internal/store"
	"github.com/hidingwill/ableton-bridge/internal/transport/tcp"
)

// fakeDAW is a loopback TCP server that answers every command with
// success, recording the command types it received in order.
type fakeDAW struct {
	listener net.Listener
	types    chan string
}

func newFakeDAW(t *testing.T) *fakeDAW {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	f := &fakeDAW{listener: ln, types: make(chan string, 16)}

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		reader := bufio.NewReader(conn)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			var cmd tcp.Command
			json.Unmarshal([]byte(line), &cmd)
			f.types <- cmd.Type
			conn.Write([]byte(`{"status":"success","result":{}}` + "\n"))
		}
	}()
	return f
}

func (f *fakeDAW) addr() string { return f.listener.Addr().String() }
func (f *fakeDAW) close()       { f.listener.Close() }

func newTestPipeline(t *testing.T, daw *fakeDAW) *pipeline.Pipeline {
	t.Helper()
	client := tcp.NewClient(daw.addr(), logging.NewNop(), readiness.NewEvent())
	t.Cleanup(func() { client.Close() })
	return pipeline.New(client, nil, logging.NewNop())
}

func newTestDeps(t *testing.T, daw *fakeDAW) Deps {
	t.Helper()
	cacheDir := t.TempDir()
	cache := catalog.New(logging.NewNop(), readiness.NewEvent(), catalog.NewStore(cacheDir))
	require.NoError(t, cache.Populate(context.Background(), func(ctx context.Context, d, i int) ([]catalog.Item, error) {
		return []catalog.Item{{URI: "device:wavetable-1", Name: "Wavetable", Category: "instruments", Depth: 1}}, nil
	}))

	templatesDir := t.TempDir()
	templates, err := store.NewTemplateStore(templatesDir)
	require.NoError(t, err)

	return Deps{
		Pipeline:  newTestPipeline(t, daw),
		Catalog:   cache,
		Snapshots: store.NewSnapshotStore(),
		Macros:    store.NewMacroStore(),
		ParamMaps: store.NewParameterMapStore(nil),
		Templates: templates,
		Logger:    logging.NewNop(),
	}
}

func TestSetTempoSendsOneCommand(t *testing.T) {
	daw := newFakeDAW(t)
	defer daw.close()
	deps := newTestDeps(t, daw)

	reg := dispatcher.NewRegistry()
	Register(reg, deps)
	d := dispatcher.New(reg, alwaysReady{}, logging.NewNop(), nil, dispatcher.Options{})

	raw := d.Dispatch(context.Background(), "set_tempo", map[string]any{"bpm": 128.0})
	var env dispatcher.Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, "set_tempo", <-daw.types)
}

func TestSetTempoValidatesRange(t *testing.T) {
	daw := newFakeDAW(t)
	defer daw.close()
	deps := newTestDeps(t, daw)

	reg := dispatcher.NewRegistry()
	Register(reg, deps)
	d := dispatcher.New(reg, alwaysReady{}, logging.NewNop(), nil, dispatcher.Options{})

	raw := d.Dispatch(context.Background(), "set_tempo", map[string]any{"bpm": -5.0})
	var env dispatcher.Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, "error", env.Status)
}

func TestCreateInstrumentTrackIssuesCommandsInOrder(t *testing.T) {
	daw := newFakeDAW(t)
	defer daw.close()
	deps := newTestDeps(t, daw)

	reg := dispatcher.NewRegistry()
	Register(reg, deps)
	d := dispatcher.New(reg, alwaysReady{}, logging.NewNop(), nil, dispatcher.Options{})

	raw := d.Dispatch(context.Background(), "create_instrument_track", map[string]any{
		"instrument_name": "Wavetable",
		"track_name":      "Lead",
		"color":           5.0,
	})
	var env dispatcher.Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	require.Equal(t, "ok", env.Status, env.Message)

	assert.Equal(t, "create_midi_track", <-daw.types)
	assert.Equal(t, "load_instrument_or_effect", <-daw.types)
	assert.Equal(t, "set_track_name", <-daw.types)
	assert.Equal(t, "set_track_color", <-daw.types)
}

func TestSaveThenLoadEffectChainTemplateRoundTrips(t *testing.T) {
	daw := newFakeDAW(t)
	defer daw.close()
	deps := newTestDeps(t, daw)

	reg := dispatcher.NewRegistry()
	Register(reg, deps)
	d := dispatcher.New(reg, alwaysReady{}, logging.NewNop(), nil, dispatcher.Options{})

	saveRaw := d.Dispatch(context.Background(), "save_effect_chain_template", map[string]any{
		"name": "lead chain",
		"devices": []any{
			map[string]any{"uri": "device:wavetable-1"},
		},
	})
	var saveEnv dispatcher.Envelope
	require.NoError(t, json.Unmarshal([]byte(saveRaw), &saveEnv))
	require.Equal(t, "ok", saveEnv.Status, saveEnv.Message)

	loadRaw := d.Dispatch(context.Background(), "load_effect_chain_template", map[string]any{"name": "lead chain"})
	var loadEnv dispatcher.Envelope
	require.NoError(t, json.Unmarshal([]byte(loadRaw), &loadEnv))
	assert.Equal(t, "ok", loadEnv.Status, loadEnv.Message)
}

func TestListMacrosAndSnapshotsStartEmpty(t *testing.T) {
	daw := newFakeDAW(t)
	defer daw.close()
	deps := newTestDeps(t, daw)

	reg := dispatcher.NewRegistry()
	Register(reg, deps)
	d := dispatcher.New(reg, alwaysReady{}, logging.NewNop(), nil, dispatcher.Options{})

	raw := d.Dispatch(context.Background(), "list_macros", nil)
	var env dispatcher.Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, "ok", env.Status)
	assert.Empty(t, env.Data)

	raw = d.Dispatch(context.Background(), "list_snapshots", nil)
	var snapEnv dispatcher.Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &snapEnv))
	assert.Equal(t, "ok", snapEnv.Status)
	assert.Empty(t, snapEnv.Data)
}

// Snapshot, macro-apply, and discovery tools route through the OSC
// bridge client; they are exercised end-to-end in
// internal/transport/osc's own loopback tests, which cover the same
// Call/reassembly path these handlers call into.

type alwaysReady struct{}

func (alwaysReady) DAWConnected() bool                      { return true }
func (alwaysReady) BridgeConnected(ctx context.Context) bool { return true }
func (alwaysReady) CatalogPopulated() bool                   { return true }
func (alwaysReady) CatalogCount() int                        { return 1 }
