package game

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"lukechampine.com/blake3"
)

// Digest returns a hex blake3 hash of the snapshot and every tile's state.
// Two simulations fed the same inputs produce the same digest.
func (s *Simulation) Digest() (string, error) {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot: %w", err)
	}

	h := blake3.New(32, nil)
	h.Write(data)

	var buf [8]byte
	putFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	for i := range s.m.Tiles {
		t := &s.m.Tiles[i]
		h.Write([]byte(t.Terrain))
		h.Write([]byte(t.Water))
		h.Write([]byte(t.Grass))
		h.Write([]byte(t.Structure))
		putFloat(t.Slime)
		putFloat(t.Resources.Biomass)
		putFloat(t.Resources.Water)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
