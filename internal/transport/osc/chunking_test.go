package osc

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReassemblySplitThenJoinIsIdentity(t *testing.T) {
	payload := []byte(`{"status":"success","result":{"parameters":[1,2,3]}}`)
	pieceSize := 16
	var pieces [][]byte
	for i := 0; i < len(payload); i += pieceSize {
		end := i + pieceSize
		if end > len(payload) {
			end = len(payload)
		}
		pieces = append(pieces, payload[i:end])
	}

	r := newReassembly()
	for i, p := range pieces {
		done, err := r.add(i, len(pieces), base64.URLEncoding.EncodeToString(p))
		require.NoError(t, err)
		if i < len(pieces)-1 {
			assert.False(t, done)
		} else {
			assert.True(t, done)
		}
	}

	assembled, err := r.assemble()
	require.NoError(t, err)
	assert.Equal(t, payload, assembled)
}

func TestReassemblyReportsMissingIndices(t *testing.T) {
	r := newReassembly()
	_, err := r.add(0, 3, base64.URLEncoding.EncodeToString([]byte("a")))
	require.NoError(t, err)
	_, err = r.add(2, 3, base64.URLEncoding.EncodeToString([]byte("c")))
	require.NoError(t, err)

	assert.Equal(t, []int{1}, r.missing())
	assert.Equal(t, 2, r.received())
}

func TestReassemblyIgnoresDuplicateIndex(t *testing.T) {
	r := newReassembly()
	done, err := r.add(0, 2, "aa")
	require.NoError(t, err)
	assert.False(t, done)

	done, err = r.add(0, 2, "aa-again")
	require.NoError(t, err)
	assert.False(t, done, "duplicate index must not count toward completion")
}
