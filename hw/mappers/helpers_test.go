package mappers

import (
	"testing"

	"github.com/jshorfjr/veloce/hw/snapshot"
)

func saveCart(cart *Cartridge) []byte {
	w := snapshot.NewWriter()
	cart.SaveState(w)
	return w.Bytes()
}

func loadCart(t *testing.T, cart *Cartridge, blob []byte) {
	t.Helper()
	r := snapshot.NewReader(blob)
	cart.LoadState(r)
	if err := r.Err(); err != nil {
		t.Fatalf("failed to restore cartridge state: %v", err)
	}
}

// captureReads samples a few observable addresses, enough to notice a board
// whose banking state did not survive a save/load cycle.
func captureReads(m Mapper) [4]uint8 {
	return [4]uint8{
		m.CPURead(0x8000),
		m.CPURead(0xC000),
		m.PPURead(0x0000, 0),
		m.CPURead(0x6000),
	}
}
