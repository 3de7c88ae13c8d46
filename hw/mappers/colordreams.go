package mappers

import (
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// Color Dreams (mapper 11): 32KiB PRG and 8KiB CHR banks selected by a single
// register, PRG in the low bits and CHR in the high nibble (the inverse of
// GxROM's layout).
type colorDreams struct {
	base

	prgBank uint8
	chrBank uint8
	prgOff  uint32
	chrOff  uint32
}

func newColorDreams(cart *Cartridge, mirror ines.NTMirroring) Mapper {
	m := &colorDreams{base: base{cart: cart, mirror: mirror}}
	m.Reset()
	return m
}

func (m *colorDreams) Reset() {
	m.prgBank = 0
	m.chrBank = 0
	m.prgOff = 0
	m.chrOff = 0
}

func (m *colorDreams) CPURead(addr uint16) uint8 {
	if addr >= 0x8000 {
		return m.prgAt(m.prgOff + uint32(addr&0x7FFF))
	}
	return 0
}

func (m *colorDreams) CPUWrite(addr uint16, val uint8) {
	if addr < 0x8000 {
		return
	}
	m.prgBank = val & 0x03
	m.chrBank = (val >> 4) & 0x0F
	m.prgOff = uint32(m.prgBank) * 0x8000 % uint32(len(m.cart.PRGROM))
	m.chrOff = uint32(m.chrBank) * 0x2000 % uint32(len(m.cart.CHR))
}

func (m *colorDreams) PPURead(addr uint16, _ uint32) uint8 {
	if addr < 0x2000 {
		return m.chrAt(m.chrOff + uint32(addr))
	}
	return 0
}

func (m *colorDreams) PPUWrite(addr uint16, val uint8) {
	if addr < 0x2000 {
		m.chrSet(m.chrOff+uint32(addr), val)
	}
}

func (m *colorDreams) SaveState(w *snapshot.Writer) {
	w.U8(m.prgBank)
	w.U8(m.chrBank)
}

func (m *colorDreams) LoadState(r *snapshot.Reader) {
	m.prgBank = r.U8()
	m.chrBank = r.U8()
	m.prgOff = uint32(m.prgBank) * 0x8000 % uint32(len(m.cart.PRGROM))
	m.chrOff = uint32(m.chrBank) * 0x2000 % uint32(len(m.cart.CHR))
}
