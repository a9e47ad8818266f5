// Package store implements the bridge's shared stores:
// snapshots, macro controllers, and parameter maps (process-lifetime,
// in-memory only), plus effect-chain templates (disk write-through).
// Every store is keyed by caller-supplied identifiers, guarded by its own
// mutex, and returns copies on iteration.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// ParameterValue is one named parameter captured in a Snapshot.
type ParameterValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Snapshot is a captured, immutable set of parameter values for a
// device.
type Snapshot struct {
	ID         string           `json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	DeviceRef  string           `json:"device_ref"`
	Parameters []ParameterValue `json:"parameters"`
}

// SnapshotStore is a dict-like container of Snapshots, keyed by ID,
// serialized by its own mutex.
type SnapshotStore struct {
	mu   sync.RWMutex
	byID map[string]Snapshot
}

// NewSnapshotStore constructs an empty SnapshotStore.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{byID: make(map[string]Snapshot)}
}

// Create captures a new immutable snapshot. If id is empty, one is
// generated.
func (s *SnapshotStore) Create(id, deviceRef string, params []ParameterValue) Snapshot {
	if id == "" {
		id = uuid.NewString()
	}
	snap := Snapshot{ID: id, CreatedAt: time.Now(), DeviceRef: deviceRef}
	if err := copier.Copy(&snap.Parameters, &params); err != nil {
		snap.Parameters = append([]ParameterValue(nil), params...)
	}

	s.mu.Lock()
	s.byID[id] = snap
	s.mu.Unlock()
	return snap
}

// Get returns a copy of the snapshot and whether it was found.
func (s *SnapshotStore) Get(id string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.byID[id]
	return snap, ok
}

// GetOrError is a convenience wrapper returning a typed InvalidInput
// error for an unknown id, matching the dispatcher's uniform error envelope.
func (s *SnapshotStore) GetOrError(id string) (Snapshot, error) {
	snap, ok := s.Get(id)
	if !ok {
		return Snapshot{}, bridgeerr.Newf(bridgeerr.InvalidInput, "unknown snapshot id %q", id)
	}
	return snap, nil
}

// List returns a copy of every stored snapshot.
func (s *SnapshotStore) List() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, 0, len(s.byID))
	for _, snap := range s.byID {
		out = append(out, snap)
	}
	return out
}
