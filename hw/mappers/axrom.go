package mappers

import (
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// AxROM (mapper 7): switchable 32KiB PRG bank, single-screen mirroring with
// the nametable chosen by bit 4 of the bank register. Powers up on the last
// bank so the reset vector is valid.
type axrom struct {
	base

	prgBank uint8
	prgOff  uint32
}

func newAxROM(cart *Cartridge, mirror ines.NTMirroring) Mapper {
	_ = mirror // AxROM ignores the header, mirroring is board-controlled
	m := &axrom{base: base{cart: cart, mirror: ines.OnlyAScreen}}
	m.Reset()
	return m
}

func (m *axrom) Reset() {
	banks := uint32(len(m.cart.PRGROM)) / 0x8000
	if banks == 0 {
		banks = 1
	}
	m.prgBank = uint8(banks - 1)
	m.prgOff = uint32(m.prgBank) * 0x8000
	m.mirror = ines.OnlyAScreen
}

func (m *axrom) CPURead(addr uint16) uint8 {
	if addr >= 0x8000 {
		return m.prgAt(m.prgOff + uint32(addr&0x7FFF))
	}
	return 0
}

func (m *axrom) CPUWrite(addr uint16, val uint8) {
	if addr < 0x8000 {
		return
	}
	m.prgBank = val & 0x0F
	m.prgOff = uint32(m.prgBank) * 0x8000 % uint32(len(m.cart.PRGROM))
	if val&0x10 != 0 {
		m.mirror = ines.OnlyBScreen
	} else {
		m.mirror = ines.OnlyAScreen
	}
}

func (m *axrom) PPURead(addr uint16, _ uint32) uint8 {
	if addr < 0x2000 {
		return m.chrAt(uint32(addr))
	}
	return 0
}

func (m *axrom) PPUWrite(addr uint16, val uint8) {
	if addr < 0x2000 {
		m.chrSet(uint32(addr), val)
	}
}

func (m *axrom) SaveState(w *snapshot.Writer) {
	w.U8(m.prgBank)
	w.U8(uint8(m.mirror))
}

func (m *axrom) LoadState(r *snapshot.Reader) {
	m.prgBank = r.U8()
	m.mirror = ines.NTMirroring(r.U8())
	m.prgOff = uint32(m.prgBank) * 0x8000 % uint32(len(m.cart.PRGROM))
}
