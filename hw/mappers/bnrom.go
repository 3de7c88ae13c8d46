package mappers

import (
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// Mapper 34 covers two boards distinguished by their CHR configuration:
// BNROM (CHR RAM, 32KiB PRG banks selected at $8000+) and NINA-001 (CHR ROM,
// registers in the top of PRG RAM space).
type bnrom struct {
	base

	isNina001 bool

	prgBank  uint8
	chrBank0 uint8
	chrBank1 uint8

	prgOff  uint32
	chrOff0 uint32
	chrOff1 uint32
}

func newBNROM(cart *Cartridge, mirror ines.NTMirroring) Mapper {
	m := &bnrom{base: base{cart: cart, mirror: mirror}}
	m.isNina001 = !cart.HasCHRRAM
	m.Reset()
	return m
}

func (m *bnrom) Reset() {
	m.prgBank = 0
	m.chrBank0 = 0
	m.chrBank1 = 0
	m.prgOff = 0
	m.chrOff0 = 0
	m.chrOff1 = 0x1000
}

func (m *bnrom) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAMRead(addr)
	case addr >= 0x8000:
		return m.prgAt(m.prgOff + uint32(addr&0x7FFF))
	}
	return 0
}

func (m *bnrom) CPUWrite(addr uint16, val uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.prgRAMWrite(addr, val)

		if m.isNina001 {
			chrSize := uint32(len(m.cart.CHR))
			switch addr {
			case 0x7FFD:
				m.prgBank = val & 0x01
				m.prgOff = uint32(m.prgBank) * 0x8000 % uint32(len(m.cart.PRGROM))
			case 0x7FFE:
				m.chrBank0 = val & 0x0F
				m.chrOff0 = uint32(m.chrBank0) * 0x1000 % chrSize
			case 0x7FFF:
				m.chrBank1 = val & 0x0F
				m.chrOff1 = uint32(m.chrBank1) * 0x1000 % chrSize
			}
		}
		return
	}

	if addr >= 0x8000 && !m.isNina001 {
		m.prgBank = val & 0x03
		m.prgOff = uint32(m.prgBank) * 0x8000 % uint32(len(m.cart.PRGROM))
	}
}

func (m *bnrom) PPURead(addr uint16, _ uint32) uint8 {
	if addr >= 0x2000 {
		return 0
	}
	if !m.isNina001 {
		return m.chrAt(uint32(addr))
	}
	if addr < 0x1000 {
		return m.chrAt(m.chrOff0 + uint32(addr&0x0FFF))
	}
	return m.chrAt(m.chrOff1 + uint32(addr&0x0FFF))
}

func (m *bnrom) PPUWrite(addr uint16, val uint8) {
	if addr < 0x2000 {
		m.chrSet(uint32(addr), val)
	}
}

func (m *bnrom) SaveState(w *snapshot.Writer) {
	w.U8(m.prgBank)
	w.U8(m.chrBank0)
	w.U8(m.chrBank1)
}

func (m *bnrom) LoadState(r *snapshot.Reader) {
	m.prgBank = r.U8()
	m.chrBank0 = r.U8()
	m.chrBank1 = r.U8()

	m.prgOff = uint32(m.prgBank) * 0x8000 % uint32(len(m.cart.PRGROM))
	if m.isNina001 {
		chrSize := uint32(len(m.cart.CHR))
		m.chrOff0 = uint32(m.chrBank0) * 0x1000 % chrSize
		m.chrOff1 = uint32(m.chrBank1) * 0x1000 % chrSize
	}
}
