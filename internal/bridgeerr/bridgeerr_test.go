package bridgeerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := New(Timeout, "read deadline exceeded")
	assert.Equal(t, Timeout, KindOf(err))

	wrapped := errors.New("boom")
	assert.Equal(t, Internal, KindOf(wrapped))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := Wrap(Disconnected, "tcp send failed", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, Disconnected, KindOf(err))
	assert.Contains(t, err.Error(), "connection reset by peer")
}

func TestIsMatchesOnKindOnly(t *testing.T) {
	a := New(BridgeBusy, "discovery in flight")
	b := New(BridgeBusy, "batch in flight")
	c := New(Timeout, "discovery in flight")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestWithDetails(t *testing.T) {
	err := New(ProtocolError, "chunk reassembly failed").WithDetails(map[string]any{
		"missing": []int{1, 3},
	})
	details, ok := err.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []int{1, 3}, details["missing"])
}
