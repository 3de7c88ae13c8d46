package mappers

import (
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// GxROM (mapper 66): one register, CHR bank in bits 0-1 and PRG bank in
// bits 4-5.
type gxrom struct {
	base

	prgBank uint8
	chrBank uint8
	prgOff  uint32
	chrOff  uint32
}

func newGxROM(cart *Cartridge, mirror ines.NTMirroring) Mapper {
	m := &gxrom{base: base{cart: cart, mirror: mirror}}
	m.Reset()
	return m
}

func (m *gxrom) Reset() {
	m.prgBank = 0
	m.chrBank = 0
	m.prgOff = 0
	m.chrOff = 0
}

func (m *gxrom) CPURead(addr uint16) uint8 {
	if addr >= 0x8000 {
		return m.prgAt(m.prgOff + uint32(addr&0x7FFF))
	}
	return 0
}

func (m *gxrom) CPUWrite(addr uint16, val uint8) {
	if addr < 0x8000 {
		return
	}
	m.chrBank = val & 0x03
	m.prgBank = (val >> 4) & 0x03
	m.prgOff = uint32(m.prgBank) * 0x8000 % uint32(len(m.cart.PRGROM))
	m.chrOff = uint32(m.chrBank) * 0x2000 % uint32(len(m.cart.CHR))
}

func (m *gxrom) PPURead(addr uint16, _ uint32) uint8 {
	if addr < 0x2000 {
		return m.chrAt(m.chrOff + uint32(addr))
	}
	return 0
}

func (m *gxrom) PPUWrite(addr uint16, val uint8) {
	if addr < 0x2000 {
		m.chrSet(m.chrOff+uint32(addr), val)
	}
}

func (m *gxrom) SaveState(w *snapshot.Writer) {
	w.U8(m.prgBank)
	w.U8(m.chrBank)
}

func (m *gxrom) LoadState(r *snapshot.Reader) {
	m.prgBank = r.U8()
	m.chrBank = r.U8()
	m.prgOff = uint32(m.prgBank) * 0x8000 % uint32(len(m.cart.PRGROM))
	m.chrOff = uint32(m.chrBank) * 0x2000 % uint32(len(m.cart.CHR))
}
