package hw

import (
	"testing"

	"github.com/jshorfjr/veloce/hw/apu"
	"github.com/jshorfjr/veloce/ines"
)

// testRom assembles a 32KiB NROM image with the given program at $8000 and
// all vectors pointing to resetTo.
func testRom(program []byte, resetTo uint16) []byte {
	hdr := make([]byte, 16)
	copy(hdr, ines.Magic)
	hdr[4] = 2 // 32KiB PRG
	hdr[5] = 1 // 8KiB CHR

	prg := make([]byte, 0x8000)
	copy(prg, program)

	// NMI, reset and IRQ vectors
	prg[0x7FFA] = uint8(resetTo)
	prg[0x7FFB] = uint8(resetTo >> 8)
	prg[0x7FFC] = uint8(resetTo)
	prg[0x7FFD] = uint8(resetTo >> 8)
	prg[0x7FFE] = uint8(resetTo)
	prg[0x7FFF] = uint8(resetTo >> 8)

	buf := append(hdr, prg...)
	buf = append(buf, make([]byte, 0x2000)...)
	return buf
}

// newTestConsole builds a console running the given program, defaulting to a
// tight jump-to-self loop.
func newTestConsole(t *testing.T, program []byte) *Console {
	t.Helper()

	if program == nil {
		program = []byte{0x4C, 0x00, 0x80} // JMP $8000
	}
	n := NewConsole(apu.SyncAverage)
	if err := n.LoadROM(testRom(program, 0x8000)); err != nil {
		t.Fatal(err)
	}
	return n
}

// loadAt pokes a program into RAM and points the CPU at it.
func loadAt(n *Console, addr uint16, program ...uint8) {
	for i, b := range program {
		n.Bus.Write8(addr+uint16(i), b)
	}
	n.CPU.PC = addr
}

// stepPPUTo advances the PPU to the given position.
func stepPPUTo(t *testing.T, p *PPU, scanline, cycle int) {
	t.Helper()
	for i := 0; i < NumScanlines*NumCycles*2; i++ {
		if p.scanline == scanline && p.cycle == cycle {
			return
		}
		p.Step()
	}
	t.Fatalf("PPU never reached (%d, %d)", scanline, cycle)
}
