package mappers

import (
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// CNROM (mapper 3): fixed PRG, switchable 8KiB CHR bank.
type cnrom struct {
	base

	chrBank uint8
	chrOff  uint32
	prgMask uint16
}

func newCNROM(cart *Cartridge, mirror ines.NTMirroring) Mapper {
	m := &cnrom{base: base{cart: cart, mirror: mirror}}
	m.prgMask = 0x7FFF
	if len(cart.PRGROM) <= 0x4000 {
		m.prgMask = 0x3FFF
	}
	m.Reset()
	return m
}

func (m *cnrom) Reset() {
	m.chrBank = 0
	m.chrOff = 0
}

func (m *cnrom) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAMRead(addr)
	case addr >= 0x8000:
		return m.prgAt(uint32(addr & m.prgMask))
	}
	return 0
}

func (m *cnrom) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.prgRAMWrite(addr, val)
	case addr >= 0x8000:
		m.chrBank = val & 0x03
		m.chrOff = uint32(m.chrBank) * 0x2000 % uint32(len(m.cart.CHR))
		modMapper.DebugZ("CNROM CHR bank").Uint8("bank", m.chrBank).End()
	}
}

func (m *cnrom) PPURead(addr uint16, _ uint32) uint8 {
	if addr < 0x2000 {
		return m.chrAt(m.chrOff + uint32(addr))
	}
	return 0
}

func (m *cnrom) PPUWrite(addr uint16, val uint8) {
	if addr < 0x2000 {
		m.chrSet(m.chrOff+uint32(addr), val)
	}
}

func (m *cnrom) SaveState(w *snapshot.Writer) {
	w.U8(m.chrBank)
}

func (m *cnrom) LoadState(r *snapshot.Reader) {
	m.chrBank = r.U8()
	m.chrOff = uint32(m.chrBank) * 0x2000 % uint32(len(m.cart.CHR))
}
