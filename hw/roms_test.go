package hw

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jshorfjr/veloce/hw/apu"
)

// TestNestestAuto runs nestest.nes in automation mode (PC forced to $C000):
// the rom exercises every documented opcode and leaves its verdict in
// $0002/$0003. The rom is not distributable, so the test is skipped when
// testdata doesn't provide it.
func TestNestestAuto(t *testing.T) {
	path := filepath.Join("testdata", "nestest.nes")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Skipf("skipping: %s not present", path)
	}

	n := NewConsole(apu.SyncAverage)
	if err := n.LoadROM(data); err != nil {
		t.Fatal(err)
	}
	n.CPU.PC = 0xC000

	for i := 0; i < 9000; i++ {
		n.CPU.Step()
	}

	if got := n.Bus.RAM[0x0002]; got != 0x00 {
		t.Errorf("$0002 = %02x, want 00 (documented opcode failure)", got)
	}
}
