package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

func TestSuccessEnvelopeJSON(t *testing.T) {
	env := successEnvelope("done", map[string]any{"n": 1})
	raw, err := env.JSON()
	require.NoError(t, err)
	assert.Contains(t, raw, `"status":"ok"`)
	assert.Contains(t, raw, `"message":"done"`)
}

func TestErrorEnvelopeCarriesKindAndDetails(t *testing.T) {
	err := bridgeerr.New(bridgeerr.ProtocolError, "chunk reassembly failed").WithDetails([]int{1, 3})
	env := errorEnvelope("", err)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, string(bridgeerr.ProtocolError), env.Kind)
	assert.Equal(t, []int{1, 3}, env.Details)
}

func TestErrorEnvelopePrependsPrefix(t *testing.T) {
	err := bridgeerr.New(bridgeerr.DawReported, "device missing")
	env := errorEnvelope("load_device failed", err)
	assert.Contains(t, env.Message, "load_device failed")
	assert.Contains(t, env.Message, "device missing")
}
