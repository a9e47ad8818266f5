package osc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// chunkEnvelope is the OSC bridge's unit of large-response transport:
// {_c: index, _t: total, _d: base64 payload}, tagged with
// the correlating request id so the client can route stray chunks from a
// timed-out earlier call to the bin rather than an active reassembly.
type chunkEnvelope struct {
	ID    string `json:"id"`
	Chunk int    `json:"_c"`
	Total int    `json:"_t"`
	Data  string `json:"_d"`
}

// singleResponse is the shape of a non-chunked OSC bridge response.
type singleResponse struct {
	ID      string          `json:"id"`
	Status  string          `json:"status"`
	Result  json.RawMessage `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
}

// isChunkEnvelope reports whether decoded carries the chunk envelope's
// discriminating field.
func isChunkEnvelope(probe map[string]json.RawMessage) bool {
	_, ok := probe["_t"]
	return ok
}

// reassembly accumulates chunk envelopes for one in-flight request.
type reassembly struct {
	mu     sync.Mutex
	total  int
	pieces map[int]string // index -> base64 payload
}

func newReassembly() *reassembly {
	return &reassembly{pieces: make(map[int]string)}
}

// add records chunk (index, total, data). It returns (done, err): done is
// true once every index 0..total-1 has been seen. Duplicate indices are
// ignored (the caller logs a warning); mismatched totals across chunks of
// the same request are a protocol error.
func (r *reassembly) add(index, total int, data string) (done bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.total == 0 {
		r.total = total
	} else if r.total != total {
		return false, bridgeerr.Newf(bridgeerr.ProtocolError,
			"chunk envelope declared total %d, previously %d", total, r.total)
	}
	if _, dup := r.pieces[index]; dup {
		return false, nil // duplicate: caller logs and ignores
	}
	r.pieces[index] = data
	return len(r.pieces) == r.total, nil
}

// missing returns the sorted indices not yet received, for the
// missing-chunk reassembly diagnostic.
func (r *reassembly) missing() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m []int
	for i := 0; i < r.total; i++ {
		if _, ok := r.pieces[i]; !ok {
			m = append(m, i)
		}
	}
	sort.Ints(m)
	return m
}

// received reports how many distinct chunk indices have arrived so far.
func (r *reassembly) received() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pieces)
}

// expected reports the declared chunk total.
func (r *reassembly) expected() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// assemble concatenates every chunk's base64-decoded payload in index
// order and returns the reconstructed bytes. Only valid once add reports
// done == true.
func (r *reassembly) assemble() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []byte
	for i := 0; i < r.total; i++ {
		piece, ok := r.pieces[i]
		if !ok {
			return nil, fmt.Errorf("assemble called before all %d chunks arrived", r.total)
		}
		decoded, err := base64.URLEncoding.DecodeString(piece)
		if err != nil {
			return nil, bridgeerr.Wrap(bridgeerr.ProtocolError, fmt.Sprintf("decoding chunk %d", i), err)
		}
		out = append(out, decoded...)
	}
	return out, nil
}
