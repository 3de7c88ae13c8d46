package mappers

import (
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// NINA-03/06 (mapper 79): bank register decoded at $41xx-$5xxx (A15 and A13
// low, A14 and A8 high), CHR bank in bits 0-2, PRG bank in bits 3-4.
type nina03 struct {
	base

	prgBank uint8
	chrBank uint8
	prgOff  uint32
	chrOff  uint32
}

func newNINA03(cart *Cartridge, mirror ines.NTMirroring) Mapper {
	m := &nina03{base: base{cart: cart, mirror: mirror}}
	m.Reset()
	return m
}

func (m *nina03) Reset() {
	m.prgBank = 0
	m.chrBank = 0
	m.prgOff = 0
	m.chrOff = 0
}

func (m *nina03) CPURead(addr uint16) uint8 {
	if addr >= 0x8000 {
		return m.prgAt(m.prgOff + uint32(addr&0x7FFF))
	}
	return 0
}

func (m *nina03) CPUWrite(addr uint16, val uint8) {
	if addr&0xE100 != 0x4100 {
		return
	}
	m.chrBank = val & 0x07
	m.prgBank = (val >> 3) & 0x03
	m.prgOff = uint32(m.prgBank) * 0x8000 % uint32(len(m.cart.PRGROM))
	m.chrOff = uint32(m.chrBank) * 0x2000 % uint32(len(m.cart.CHR))
}

func (m *nina03) PPURead(addr uint16, _ uint32) uint8 {
	if addr < 0x2000 {
		return m.chrAt(m.chrOff + uint32(addr))
	}
	return 0
}

func (m *nina03) PPUWrite(addr uint16, val uint8) {
	if addr < 0x2000 {
		m.chrSet(m.chrOff+uint32(addr), val)
	}
}

func (m *nina03) SaveState(w *snapshot.Writer) {
	w.U8(m.prgBank)
	w.U8(m.chrBank)
}

func (m *nina03) LoadState(r *snapshot.Reader) {
	m.prgBank = r.U8()
	m.chrBank = r.U8()
	m.prgOff = uint32(m.prgBank) * 0x8000 % uint32(len(m.cart.PRGROM))
	m.chrOff = uint32(m.chrBank) * 0x2000 % uint32(len(m.cart.CHR))
}
