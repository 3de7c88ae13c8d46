package mappers

import (
	"github.com/jshorfjr/veloce/ines"
)

// NROM (mapper 0): 16 or 32KiB of PRG, no banking. 16KiB carts see their PRG
// mirrored at $C000.
type nrom struct {
	base

	prgMask uint16
}

func newNROM(cart *Cartridge, mirror ines.NTMirroring) Mapper {
	m := &nrom{base: base{cart: cart, mirror: mirror}}
	m.prgMask = 0x7FFF
	if len(cart.PRGROM) <= 0x4000 {
		m.prgMask = 0x3FFF
	}
	return m
}

func (m *nrom) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAMRead(addr)
	case addr >= 0x8000:
		return m.prgAt(uint32(addr & m.prgMask))
	}
	return 0
}

func (m *nrom) CPUWrite(addr uint16, val uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.prgRAMWrite(addr, val)
	}
}

func (m *nrom) PPURead(addr uint16, _ uint32) uint8 {
	if addr < 0x2000 {
		return m.chrAt(uint32(addr))
	}
	return 0
}

func (m *nrom) PPUWrite(addr uint16, val uint8) {
	if addr < 0x2000 {
		m.chrSet(uint32(addr), val)
	}
}
