package mappers

import (
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// UxROM (mapper 2): switchable 16KiB PRG bank at $8000, last bank fixed at
// $C000, 8KiB of CHR RAM.
type uxrom struct {
	base

	prgBank uint8
	prgOff  uint32
	lastOff uint32
}

func newUxROM(cart *Cartridge, mirror ines.NTMirroring) Mapper {
	m := &uxrom{base: base{cart: cart, mirror: mirror}}
	m.Reset()
	return m
}

func (m *uxrom) Reset() {
	m.prgBank = 0
	m.prgOff = 0
	m.lastOff = uint32(len(m.cart.PRGROM)) - 0x4000
}

func (m *uxrom) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAMRead(addr)
	case addr >= 0x8000 && addr < 0xC000:
		return m.prgAt(m.prgOff + uint32(addr&0x3FFF))
	case addr >= 0xC000:
		return m.prgAt(m.lastOff + uint32(addr&0x3FFF))
	}
	return 0
}

func (m *uxrom) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.prgRAMWrite(addr, val)
	case addr >= 0x8000:
		m.prgBank = val & 0x0F
		m.prgOff = uint32(m.prgBank) * 0x4000 % uint32(len(m.cart.PRGROM))
	}
}

func (m *uxrom) PPURead(addr uint16, _ uint32) uint8 {
	if addr < 0x2000 {
		return m.chrAt(uint32(addr))
	}
	return 0
}

func (m *uxrom) PPUWrite(addr uint16, val uint8) {
	if addr < 0x2000 {
		m.chrSet(uint32(addr), val)
	}
}

func (m *uxrom) SaveState(w *snapshot.Writer) {
	w.U8(m.prgBank)
}

func (m *uxrom) LoadState(r *snapshot.Reader) {
	m.prgBank = r.U8()
	m.prgOff = uint32(m.prgBank) * 0x4000 % uint32(len(m.cart.PRGROM))
}
