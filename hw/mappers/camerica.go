package mappers

import (
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// Camerica BF909x (mapper 71): 16KiB switchable PRG at $8000, last bank
// fixed, CHR RAM. Fire Hawk boards add single-screen mirroring control at
// $9000-$9FFF; honoring it unconditionally is harmless for the rest.
type camerica struct {
	base

	prgBank  uint8
	prgOff   uint32
	fixedOff uint32
}

func newCamerica(cart *Cartridge, mirror ines.NTMirroring) Mapper {
	m := &camerica{base: base{cart: cart, mirror: mirror}}
	m.Reset()
	return m
}

func (m *camerica) Reset() {
	m.prgBank = 0
	m.prgOff = 0
	m.fixedOff = uint32(len(m.cart.PRGROM)) - 0x4000
}

func (m *camerica) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x8000 && addr < 0xC000:
		return m.prgAt(m.prgOff + uint32(addr&0x3FFF))
	case addr >= 0xC000:
		return m.prgAt(m.fixedOff + uint32(addr&0x3FFF))
	}
	return 0
}

func (m *camerica) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x9000 && addr < 0xA000:
		if val&0x10 != 0 {
			m.mirror = ines.OnlyBScreen
		} else {
			m.mirror = ines.OnlyAScreen
		}
	case addr >= 0xC000:
		m.prgBank = val & 0x0F
		m.prgOff = uint32(m.prgBank) * 0x4000 % uint32(len(m.cart.PRGROM))
	}
}

func (m *camerica) PPURead(addr uint16, _ uint32) uint8 {
	if addr < 0x2000 {
		return m.chrAt(uint32(addr))
	}
	return 0
}

func (m *camerica) PPUWrite(addr uint16, val uint8) {
	if addr < 0x2000 {
		m.chrSet(uint32(addr), val)
	}
}

func (m *camerica) SaveState(w *snapshot.Writer) {
	w.U8(m.prgBank)
	w.U8(uint8(m.mirror))
}

func (m *camerica) LoadState(r *snapshot.Reader) {
	m.prgBank = r.U8()
	m.mirror = ines.NTMirroring(r.U8())
	m.prgOff = uint32(m.prgBank) * 0x4000 % uint32(len(m.cart.PRGROM))
}
