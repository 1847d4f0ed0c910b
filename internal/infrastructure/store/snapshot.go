package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot wraps a serialized state with the metadata needed to tell writes
// apart. Revision grows by one with every write of the same key.
type Snapshot struct {
	Key      string          `json:"key"`
	Revision int             `json:"revision"`
	State    json.RawMessage `json:"state"`
	SavedAt  time.Time       `json:"saved_at"`
}

// EncodeSnapshot serializes state into a snapshot blob.
func EncodeSnapshot(key string, revision int, state any) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot state: %w", err)
	}

	return json.Marshal(Snapshot{
		Key:      key,
		Revision: revision,
		State:    raw,
		SavedAt:  time.Now().UTC(),
	})
}

// DecodeSnapshot parses a blob written by EncodeSnapshot and unmarshals its
// state into dst. dst is only written when the whole blob is valid.
func DecodeSnapshot(blob []byte, dst any) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if len(snap.State) == 0 {
		return nil, fmt.Errorf("%w: missing state", ErrInvalidSnapshot)
	}
	if err := json.Unmarshal(snap.State, dst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return &snap, nil
}
