package apu

import (
	"testing"

	"github.com/jshorfjr/veloce/hw/snapshot"
)

func saveAPU(a *APU) []byte {
	w := snapshot.NewWriter()
	a.SaveState(w)
	return w.Bytes()
}

func loadAPU(t *testing.T, a *APU, blob []byte) {
	t.Helper()
	r := snapshot.NewReader(blob)
	a.LoadState(r)
	if err := r.Err(); err != nil {
		t.Fatalf("failed to restore APU state: %v", err)
	}
}
