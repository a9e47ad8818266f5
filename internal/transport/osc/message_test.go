package osc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeMessageRoundTrip(t *testing.T) {
	encoded, err := encodeMessage("/discover_params", int32(3), "device-7", float32(0.5), "req-123")
	require.NoError(t, err)

	address, args, err := decodeMessage(encoded)
	require.NoError(t, err)

	assert.Equal(t, "/discover_params", address)
	require.Len(t, args, 4)
	assert.Equal(t, int32(3), args[0])
	assert.Equal(t, "device-7", args[1])
	assert.Equal(t, float32(0.5), args[2])
	assert.Equal(t, "req-123", args[3])
}

func TestEncodeMessagePads4ByteAligned(t *testing.T) {
	encoded, err := encodeMessage("/p", "x")
	require.NoError(t, err)
	assert.Equal(t, 0, len(encoded)%4)
}

func TestDecodeMessageRejectsUnterminatedString(t *testing.T) {
	_, _, err := decodeMessage([]byte{'/', 'a'})
	assert.Error(t, err)
}
